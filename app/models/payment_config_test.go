package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentConfigValidate(t *testing.T) {
	cfg := &PaymentConfig{
		MethodID:          "lifepay",
		APIVersion:        "2.0",
		DescriptionPrefix: "Payment for order #",
		StatusAfterPay:    "processing",
		VATShipping:       "N",
	}
	require.NoError(t, cfg.Validate())

	cfg.APIVersion = "3.0"
	assert.Error(t, cfg.Validate())

	cfg.APIVersion = "1.0"
	cfg.VATShipping = "maybe"
	assert.Error(t, cfg.Validate())
}

func TestStringMapRoundTrip(t *testing.T) {
	m := StringMap{"product": "Y", "download": "N"}

	v, err := m.Value()
	require.NoError(t, err)

	var scanned StringMap
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, m, scanned)
}

func TestStringMapScanNil(t *testing.T) {
	var m StringMap
	require.NoError(t, m.Scan(nil))
	assert.Empty(t, m)
}
