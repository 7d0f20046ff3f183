package repository

import (
	"encoding/json"
	"log"
	"time"

	"github.com/shopfox/shopfox/app/models"
	"github.com/shopfox/shopfox/internal/pkg/cache"
	"gorm.io/gorm"
)

const paymentConfigCacheTTL = 5 * time.Minute

type paymentConfigRepository struct {
	db *gorm.DB
}

// NewPaymentConfigRepository creates a new payment config repository instance
func NewPaymentConfigRepository(db *gorm.DB) PaymentConfigRepository {
	return &paymentConfigRepository{db: db}
}

// GetByMethodID loads the gateway settings row, cache-aside: a request-time
// snapshot is served from Redis until the row is saved again.
func (r *paymentConfigRepository) GetByMethodID(methodID string) (*models.PaymentConfig, error) {
	key := cacheKey(methodID)

	if raw, err := cache.Get(key); err == nil && raw != "" {
		var cfg models.PaymentConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err == nil {
			return &cfg, nil
		}
		// Stale or corrupt entry, fall through to the DB.
		_ = cache.Delete(key)
	}

	var cfg models.PaymentConfig
	if err := r.db.Where("method_id = ?", methodID).First(&cfg).Error; err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(&cfg); err == nil {
		if err := cache.Set(key, string(raw), paymentConfigCacheTTL); err != nil {
			log.Printf("payment config cache set failed: %v", err)
		}
	}

	return &cfg, nil
}

func (r *paymentConfigRepository) Save(cfg *models.PaymentConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := r.db.Save(cfg).Error; err != nil {
		return err
	}
	return cache.Delete(cacheKey(cfg.MethodID))
}

func cacheKey(methodID string) string {
	return "payment_config:" + methodID
}
