package main

import (
	"flag"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/good2go/storefront/config"
	"github.com/good2go/storefront/models"
	"github.com/good2go/storefront/pkg/logging"
	"github.com/good2go/storefront/seed"
)

func main() {
	file := flag.String("file", "", "catalog YAML to load instead of the bundled one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("load config failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	products, err := loadCatalog(*file)
	if err != nil {
		log.Error("load catalog failed", "file", *file, "err", err)
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	if err := models.Migrate(db); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	repo := models.NewProductsRepository(db)
	for i := range products {
		if err := repo.SaveProduct(&products[i]); err != nil {
			log.Error("save product failed", "id", products[i].ID, "err", err)
			os.Exit(1)
		}
	}

	all, err := repo.GetAllProducts()
	if err != nil {
		log.Error("list products failed", "err", err)
		os.Exit(1)
	}
	for _, p := range all {
		log.Info("product", "id", p.ID, "name", p.Name, "qty", p.Qty, "status", p.Availability())
	}
	log.Info("seed complete", "saved", len(products), "total", len(all))
}

func loadCatalog(path string) ([]models.Product, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.Load(f)
}
