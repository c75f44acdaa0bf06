package workpaper

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetPurchase holds vehicle/asset purchase details entered by staff
type AssetPurchase struct {
	Date          *time.Time       `json:"date,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	GST           *decimal.Decimal `json:"gst,omitempty"`
	GSTRegistered bool             `json:"gst_registered"`
	Make          string           `json:"make,omitempty"`
	Model         string           `json:"model,omitempty"`
	Year          int              `json:"year,omitempty"`
	Registration  string           `json:"registration,omitempty"`
}

// CostBase returns the depreciation cost base: GST-registered purchasers
// claim the GST separately, so it is excluded from the base.
func (p AssetPurchase) CostBase() decimal.Decimal {
	if p.GSTRegistered && p.GST != nil {
		return p.Price.Sub(*p.GST)
	}
	return p.Price
}

// AssetSale holds disposal details
type AssetSale struct {
	Date  *time.Time       `json:"date,omitempty"`
	Price decimal.Decimal  `json:"price"`
	GST   *decimal.Decimal `json:"gst,omitempty"`
}

// FuelEstimateInput configures the estimated-fuel method when no receipts exist
type FuelEstimateInput struct {
	FuelType          string           `json:"fuel_type,omitempty"`
	EngineSizeLitres  *decimal.Decimal `json:"engine_size_litres,omitempty"`
	ConsumptionRate   *decimal.Decimal `json:"consumption_rate,omitempty"`     // L/100km
	FuelPricePerLitre *decimal.Decimal `json:"fuel_price_per_litre,omitempty"`
	BusinessKM        *decimal.Decimal `json:"business_km,omitempty"`
}

// ModuleConfig is the typed module configuration. Named fields cover the
// keys the calculators read; Extra is the escape hatch for forward-compatible
// keys so unknown-but-intentional values survive round trips without being
// silently swallowed into known fields.
type ModuleConfig struct {
	Method                 *string            `json:"method,omitempty"`
	BusinessKM             *decimal.Decimal   `json:"business_km,omitempty"`
	TotalKM                *decimal.Decimal   `json:"total_km,omitempty"`
	PrivateKM              *decimal.Decimal   `json:"private_km,omitempty"`
	LogbookPct             *decimal.Decimal   `json:"logbook_pct,omitempty"`
	LogbookStart           *time.Time         `json:"logbook_start,omitempty"`
	LogbookEnd             *time.Time         `json:"logbook_end,omitempty"`
	BusinessUsePct         *decimal.Decimal   `json:"business_use_pct,omitempty"`
	GSTRegistered          *bool              `json:"gst_registered,omitempty"`
	DepreciationMethod     *string            `json:"depreciation_method,omitempty"`
	OpeningAdjustableValue *decimal.Decimal   `json:"opening_adjustable_value,omitempty"`
	EffectiveLifeYears     *decimal.Decimal   `json:"effective_life_years,omitempty"`
	Purchase               *AssetPurchase     `json:"purchase,omitempty"`
	Sale                   *AssetSale         `json:"sale,omitempty"`
	FuelEstimate           *FuelEstimateInput `json:"fuel_estimate,omitempty"`
	Extra                  map[string]any     `json:"extra,omitempty"`
}

// Merge returns this config with every non-nil field of patch applied over
// it. Unspecified keys persist, so partial updates never wipe prior values.
// Extra keys are unioned, patch winning on conflict.
func (c ModuleConfig) Merge(patch ModuleConfig) ModuleConfig {
	out := c
	if patch.Method != nil {
		out.Method = patch.Method
	}
	if patch.BusinessKM != nil {
		out.BusinessKM = patch.BusinessKM
	}
	if patch.TotalKM != nil {
		out.TotalKM = patch.TotalKM
	}
	if patch.PrivateKM != nil {
		out.PrivateKM = patch.PrivateKM
	}
	if patch.LogbookPct != nil {
		out.LogbookPct = patch.LogbookPct
	}
	if patch.LogbookStart != nil {
		out.LogbookStart = patch.LogbookStart
	}
	if patch.LogbookEnd != nil {
		out.LogbookEnd = patch.LogbookEnd
	}
	if patch.BusinessUsePct != nil {
		out.BusinessUsePct = patch.BusinessUsePct
	}
	if patch.GSTRegistered != nil {
		out.GSTRegistered = patch.GSTRegistered
	}
	if patch.DepreciationMethod != nil {
		out.DepreciationMethod = patch.DepreciationMethod
	}
	if patch.OpeningAdjustableValue != nil {
		out.OpeningAdjustableValue = patch.OpeningAdjustableValue
	}
	if patch.EffectiveLifeYears != nil {
		out.EffectiveLifeYears = patch.EffectiveLifeYears
	}
	if patch.Purchase != nil {
		out.Purchase = patch.Purchase
	}
	if patch.Sale != nil {
		out.Sale = patch.Sale
	}
	if patch.FuelEstimate != nil {
		out.FuelEstimate = patch.FuelEstimate
	}
	if len(patch.Extra) > 0 {
		merged := make(map[string]any, len(c.Extra)+len(patch.Extra))
		for k, v := range c.Extra {
			merged[k] = v
		}
		for k, v := range patch.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}
	return out
}
