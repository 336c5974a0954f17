package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHOP_SHIPPING_COST", "")
	t.Setenv("SHOP_APPLY_TIER_PRICING", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10.00", cfg.Shop.ShippingCost.StringFixed(2))
	assert.Equal(t, "usd", cfg.Shop.Currency)
	assert.False(t, cfg.Shop.ApplyTierPricing)
	assert.False(t, cfg.Shop.RevalidateStock)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Payment.Timeout)
}

func TestLoadShopOverrides(t *testing.T) {
	t.Setenv("SHOP_SHIPPING_COST", "7.5")
	t.Setenv("SHOP_CURRENCY", "USD")
	t.Setenv("SHOP_APPLY_TIER_PRICING", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7.50", cfg.Shop.ShippingCost.StringFixed(2))
	assert.Equal(t, "usd", cfg.Shop.Currency)
	assert.True(t, cfg.Shop.ApplyTierPricing)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRejectsBadShippingCost(t *testing.T) {
	t.Setenv("SHOP_SHIPPING_COST", "ten")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SHOP_SHIPPING_COST", "-1")
	_, err = Load()
	assert.Error(t, err)
}
