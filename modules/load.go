package modules

import (
	"github.com/arbportal/feedback-portal/modules/feedback"
	"github.com/arbportal/feedback-portal/pkg/application"
)

var BuiltInModules = []application.Module{
	feedback.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
