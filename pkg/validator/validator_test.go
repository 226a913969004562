package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type lineInput struct {
	ProductID uuid.UUID        `validate:"uuid_required"`
	Quantity  int              `validate:"gt=0"`
	UnitPrice decimal.Decimal  `validate:"gte=0"`
	Discount  *decimal.Decimal `validate:"omitempty,gte=0"`
	Hours     decimal.Decimal  `validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	discount := decimal.NewFromInt(3)
	valid := lineInput{
		ProductID: uuid.New(),
		Quantity:  2,
		UnitPrice: decimal.NewFromInt(10),
		Discount:  &discount,
		Hours:     decimal.RequireFromString("7.5"),
	}
	assert.Empty(t, ValidateStruct(&valid))

	negative := decimal.NewFromInt(-1)
	invalid := valid
	invalid.ProductID = uuid.Nil
	invalid.Quantity = 0
	invalid.UnitPrice = decimal.RequireFromString("-0.01")
	invalid.Discount = &negative
	invalid.Hours = decimal.Zero

	errs := ValidateStruct(&invalid)
	tags := map[string]string{}
	for _, e := range errs {
		tags[e.FailedField] = e.Tag
	}
	assert.Equal(t, "uuid_required", tags["lineInput.ProductID"])
	assert.Equal(t, "gt", tags["lineInput.Quantity"])
	assert.Equal(t, "gte", tags["lineInput.UnitPrice"])
	assert.Equal(t, "gte", tags["lineInput.Discount"])
	assert.Equal(t, "gt", tags["lineInput.Hours"])
}
