// The importer loads the legacy flat-file JSON document (the predecessor
// system's {orders, wishlist} database) into the configured store.
//
// Usage: importer -input /path/to/orders.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"storefront-service/config"
	"storefront-service/internal/filestore"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
)

func main() {
	input := flag.String("input", "", "path to the legacy orders.json document")
	flag.Parse()

	if *input == "" {
		log.Fatal("missing -input")
	}

	cfg := config.Load()

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	if closer, ok := st.(io.Closer); ok {
		defer closer.Close()
	}

	raw, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *input, err)
	}

	var data models.OrdersData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Fatalf("Failed to parse %s: %v", *input, err)
	}

	ctx := context.Background()

	imported := 0
	for i := range data.Orders {
		order := data.Orders[i]
		if err := st.CreateOrder(ctx, &order); err != nil {
			log.Fatalf("Failed to import order %s: %v", order.ID, err)
		}
		imported++
	}
	log.Printf("Imported %d orders", imported)

	imported = 0
	for _, item := range data.Wishlist {
		if err := st.AddToWishlist(ctx, item); err != nil {
			log.Fatalf("Failed to import wishlist entry %s/%s: %v", item.UserID, item.ProductID, err)
		}
		imported++
	}
	log.Printf("Imported %d wishlist entries", imported)
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "file":
		return filestore.NewFileStore(cfg.Storage.DataDir)
	case "postgres":
		return store.NewPostgresStore(cfg.Storage.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
