package main

import (
	"context"
	"flag"
	"os"

	"vendorhub/internal/config"
	"vendorhub/internal/db"
	"vendorhub/internal/importer"
	productrepo "vendorhub/internal/repository/product"

	"go.uber.org/zap"
)

func main() {
	var (
		path   = flag.String("file", "", "path to the catalog CSV")
		shopID = flag.String("shop", "", "shop id to import products into")
	)
	flag.Parse()

	cfg := config.FromEnv()
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if *path == "" || *shopID == "" {
		logger.Fatal("both -file and -shop are required")
	}

	f, err := os.Open(*path)
	if err != nil {
		logger.Fatal("open catalog file", zap.Error(err))
	}
	defer f.Close()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(pool, logger), *shopID)
	n, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import catalog", zap.Int("imported", n), zap.Error(err))
	}
	logger.Info("catalog imported", zap.Int("products", n), zap.String("shop_id", *shopID))
}
