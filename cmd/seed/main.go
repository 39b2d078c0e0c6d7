package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs-quantt/checklist-api/internal/config"
	"github.com/rs-quantt/checklist-api/internal/domain"
	"github.com/rs-quantt/checklist-api/internal/logger"
	"github.com/rs-quantt/checklist-api/internal/repository"
	"gopkg.in/yaml.v3"
)

// seedFile mirrors the YAML layout of the authored content export.
type seedFile struct {
	Checklists []seedChecklist `yaml:"checklists"`
	Categories []seedCategory  `yaml:"categories"`
}

type seedChecklist struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Items       []seedItem `yaml:"items"`
}

type seedItem struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Priority    string `yaml:"priority"`
	Description string `yaml:"description"`
}

type seedCategory struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	ChecklistIDs []string `yaml:"checklist_ids"`
}

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "checklist-seed",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	seedPath := flag.String("file", "./configs/content.yaml", "Path to the content YAML file")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Parse seed content
	seed, err := loadSeedFile(*seedPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load seed file")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	templateRepo := repository.NewTemplateRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	ctx := context.Background()

	for _, cl := range seed.Checklists {
		tpl := &domain.ChecklistTemplate{
			ID:          cl.ID,
			Title:       cl.Title,
			Description: cl.Description,
		}
		for i, item := range cl.Items {
			priority := domain.Priority(item.Priority)
			if priority == "" {
				priority = domain.PriorityMedium
			}
			tpl.Items = append(tpl.Items, domain.ChecklistItem{
				ID:          item.ID,
				ChecklistID: cl.ID,
				Label:       item.Label,
				Priority:    priority,
				Description: item.Description,
				SortOrder:   i,
			})
		}
		if err := templateRepo.Upsert(ctx, tpl); err != nil {
			appLogger.WithError(err).WithField("checklist", cl.ID).Fatal("Failed to seed checklist")
		}
		appLogger.WithFields(logger.Fields{
			"checklist": cl.ID,
			"items":     len(cl.Items),
		}).Info("Seeded checklist template")
	}

	for _, cat := range seed.Categories {
		if err := categoryRepo.Upsert(ctx, &domain.Category{
			ID:           cat.ID,
			Title:        cat.Title,
			Description:  cat.Description,
			ChecklistIDs: domain.StringArray(cat.ChecklistIDs),
		}); err != nil {
			appLogger.WithError(err).WithField("category", cat.ID).Fatal("Failed to seed category")
		}
		appLogger.WithField("category", cat.ID).Info("Seeded category")
	}

	appLogger.WithFields(logger.Fields{
		"checklists": len(seed.Checklists),
		"categories": len(seed.Categories),
	}).Info("Seeding completed")
}

// loadSeedFile reads and parses the content YAML file.
func loadSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &seed, nil
}
