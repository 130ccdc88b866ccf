package feedback

import (
	"embed"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/excel"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/normalize"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/persistence"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/stagingstore"
	"github.com/arbportal/feedback-portal/modules/feedback/presentation/controllers"
	"github.com/arbportal/feedback-portal/modules/feedback/services"
	"github.com/arbportal/feedback-portal/pkg/application"
	"github.com/arbportal/feedback-portal/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/feedback-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	conf := configuration.Use()
	store, err := stagingstore.NewStore(conf.Staging.Root, conf.Staging.ProcessedDir, app.Logger())
	if err != nil {
		return err
	}

	registry := schemadef.NewRegistry(app.Logger())
	repo := persistence.NewIncidenceRepository()

	app.RegisterServices(
		services.NewIngestService(
			registry,
			excel.NewParser(),
			normalize.New(conf.UploadLocation()),
			repo,
			store,
			app.EventPublisher(),
		),
		services.NewStagingService(store, repo, app.EventPublisher()),
		services.NewIncidenceService(repo),
	)

	services.NewAuditLogger(app.Logger()).Register(app.EventPublisher())

	app.RegisterControllers(
		controllers.NewFeedbackAPIController(app),
		controllers.NewHealthController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "feedback"
}
