// Command demo walks the concurrency disciplines against a live
// database: a stale-stamp update on a customer, independent field-group
// counters on a product, and a duplicate unique value. Intended for
// manual verification against a disposable PostgreSQL instance.
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkarpuk/rowguard/internal/config"
	"github.com/mkarpuk/rowguard/internal/logging"
	"github.com/mkarpuk/rowguard/internal/models"
	"github.com/mkarpuk/rowguard/internal/rowversion"
	"github.com/mkarpuk/rowguard/internal/store"
)

const demoUser = "demo"

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewDefault()

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error(ctx, "metrics endpoint stopped", "err", err)
			}
		}()
	}

	m, err := store.NewPostgresRepositoryManager(cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer m.Close()

	runCustomerScenario(ctx, m, logger)
	runProductScenario(ctx, m, logger)
}

func runCustomerScenario(ctx context.Context, m store.RepositoryManager, logger logging.Logger) {
	repo := m.Customers()

	added := repo.Add(ctx, &models.Customer{Name: "A", BankAccount: 12345}, demoUser)
	if !added.Success() {
		logger.Warn(ctx, "customer add failed", "code", added.Code.String(), "msg", added.FirstMessage())
		return
	}
	c := added.Payload
	stale := c.Stamp()
	logger.Info(ctx, "customer added", "id", c.ID, "row_version", rowversion.Format(c.Stamp()))

	c.Name = "A (renamed)"
	updated := repo.Update(ctx, c, demoUser)
	logger.Info(ctx, "first update", "code", updated.Code.String(), "row_version", rowversion.Format(c.Stamp()))

	// replay with the stamp read before the first update
	c.SetStamp(stale)
	conflicted := repo.Update(ctx, c, demoUser)
	logger.Info(ctx, "stale update", "code", conflicted.Code.String(), "msg", conflicted.FirstMessage())

	dup := repo.Add(ctx, &models.Customer{Name: "B", BankAccount: 12345}, demoUser)
	logger.Info(ctx, "duplicate bank account", "code", dup.Code.String(), "msg", dup.FirstMessage())
}

func runProductScenario(ctx context.Context, m store.RepositoryManager, logger logging.Logger) {
	repo := m.Products()

	added := repo.Add(ctx, &models.Product{Name: "widget", UnitsInStock: 10}, demoUser)
	if !added.Success() {
		logger.Warn(ctx, "product add failed", "code", added.Code.String(), "msg", added.FirstMessage())
		return
	}
	p := added.Payload

	qty := models.ProductQuantitiesFrom(p)
	qty.UnitsInStock = 9
	qtyRes := repo.UpdateQuantities(ctx, qty, demoUser)
	logger.Info(ctx, "quantities update", "code", qtyRes.Code.String())

	fresh := repo.GetByID(ctx, p.ID)
	if fresh.Success() {
		logger.Info(ctx, "counters after quantities update",
			"version_info", fresh.Payload.VersionInfo,
			"version_quantities", fresh.Payload.VersionQuantities)
	}

	staleInfo := models.ProductInfoFrom(p)
	staleInfo.Description = "first edit"
	first := repo.UpdateInfo(ctx, staleInfo, demoUser)
	logger.Info(ctx, "info update", "code", first.Code.String())

	// same counter again: the first edit already advanced it
	staleInfo.Description = "second edit with stale counter"
	second := repo.UpdateInfo(ctx, staleInfo, demoUser)
	logger.Info(ctx, "stale info update", "code", second.Code.String(), "msg", second.FirstMessage())
}
