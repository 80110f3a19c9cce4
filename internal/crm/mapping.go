package crm

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed mapping.yaml
var embeddedMapping []byte

// Product is the CRM nomenclature a bot variant is booked as.
type Product struct {
	ID         int64  `yaml:"id" validate:"required,gt=0"`
	CategoryID int64  `yaml:"category_id" validate:"required,gt=0"`
	Title      string `yaml:"title" validate:"required"`
}

// PaymentMethod is the CRM cashbox a payment label maps to.
type PaymentMethod struct {
	ID          int64  `yaml:"id" validate:"required,gt=0"`
	PaymentType string `yaml:"payment_type" validate:"required"`
}

// Mapping translates bot identifiers into CRM reference ids.
type Mapping struct {
	Products       map[string]Product       `yaml:"products" validate:"required,dive"`
	Payments       map[string]PaymentMethod `yaml:"payments" validate:"required,dive"`
	DefaultPayment string                   `yaml:"default_payment" validate:"required"`
}

// LoadMapping parses the mapping embedded in the binary.
func LoadMapping() (*Mapping, error) {
	return ParseMapping(embeddedMapping)
}

// ParseMapping decodes and validates a mapping document.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse crm mapping: %w", err)
	}
	if err := validator.New().Struct(m); err != nil {
		return nil, fmt.Errorf("validate crm mapping: %w", err)
	}
	if _, ok := m.Payments[m.DefaultPayment]; !ok {
		return nil, fmt.Errorf("default payment %q is not mapped", m.DefaultPayment)
	}
	return &m, nil
}

// Product looks up the nomenclature for a variant id.
func (m *Mapping) Product(variantID string) (Product, bool) {
	p, ok := m.Products[variantID]
	return p, ok
}

// Payment maps a payment label, falling back to the default (cash) method.
func (m *Mapping) Payment(label string) PaymentMethod {
	if p, ok := m.Payments[label]; ok {
		return p
	}
	return m.Payments[m.DefaultPayment]
}
