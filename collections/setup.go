// Package collections owns the PocketBase schema of the quoting backend:
// collection setup, the demo seed and startup data migrations.
package collections

import (
	"log"

	"github.com/pocketbase/pocketbase/core"
)

var (
	pricingUnits = []string{"per_user", "per_device", "per_site", "flat"}
	quoteKinds   = []string{"msp", "labor"}
	quoteStates  = []string{"pending", "approved", "denied"}
)

// Setup programmatically creates/ensures every collection of the quoting
// backend exists. Derived price fields are stored but always written by the
// server from their cost/margin pairs.
func Setup(app core.App) {
	offerings := ensureCollection(app, "msp_offerings", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.TextField{Name: "category"})
		c.Fields.Add(&core.NumberField{Name: "setup_fee_cost"})
		c.Fields.Add(&core.NumberField{Name: "setup_fee_margin"})
		c.Fields.Add(&core.NumberField{Name: "setup_fee"})
		c.Fields.Add(&core.BoolField{Name: "is_active"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	levels := ensureCollection(app, "service_levels", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "offering",
			Required:      true,
			CollectionId:  offerings.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "pricing_unit",
			Required:  true,
			Values:    pricingUnits,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "license_cost"})
		c.Fields.Add(&core.NumberField{Name: "license_margin"})
		c.Fields.Add(&core.NumberField{Name: "base_price"})
		c.Fields.Add(&core.NumberField{Name: "professional_services_cost"})
		c.Fields.Add(&core.NumberField{Name: "professional_services_margin"})
		c.Fields.Add(&core.NumberField{Name: "professional_services_price"})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
	})

	options := ensureCollection(app, "service_level_options", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "service_level",
			Required:      true,
			CollectionId:  levels.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "pricing_unit",
			Required:  true,
			Values:    pricingUnits,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "monthly_cost"})
		c.Fields.Add(&core.NumberField{Name: "margin_percent"})
		c.Fields.Add(&core.NumberField{Name: "monthly_price"})
	})

	ensureCollection(app, "labor_items", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "hours_per_unit"})
		c.Fields.Add(&core.NumberField{Name: "rate_per_hour"})
		c.Fields.Add(&core.NumberField{Name: "unit_price"})
		c.Fields.Add(&core.BoolField{Name: "unit_price_override"})
		c.Fields.Add(&core.TextField{Name: "unit_of_measure"})
		c.Fields.Add(&core.TextField{Name: "section"})
		c.Fields.Add(&core.TextField{Name: "reference_architecture"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	blueprints := ensureCollection(app, "solution_blueprints", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.NumberField{Name: "overhead_percent"})
		c.Fields.Add(&core.NumberField{Name: "contingency_percent"})
		addLaborDraftFields(c)
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	// Catalog references are kept as plain ids so a deleted catalog item
	// leaves an unresolved selection instead of a cleared relation.
	ensureCollection(app, "blueprint_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "blueprint",
			Required:      true,
			CollectionId:  blueprints.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "catalog_item_id", Required: true})
		c.Fields.Add(&core.NumberField{Name: "quantity"})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
	})

	quotes := ensureCollection(app, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "quote_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "customer_name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    quoteKinds,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    quoteStates,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "offering",
			CollectionId: offerings.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "service_level",
			CollectionId: levels.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "options",
			CollectionId: options.Id,
			MaxSelect:    50,
		})
		// Snapshots taken when the quote is priced.
		c.Fields.Add(&core.TextField{Name: "offering_name"})
		c.Fields.Add(&core.TextField{Name: "service_level_name"})
		c.Fields.Add(&core.TextField{Name: "pricing_unit"})
		c.Fields.Add(&core.NumberField{Name: "unit_price"})
		c.Fields.Add(&core.NumberField{Name: "quantity"})
		c.Fields.Add(&core.NumberField{Name: "duration_months"})
		c.Fields.Add(&core.NumberField{Name: "annual_discount_percent"})
		c.Fields.Add(&core.BoolField{Name: "apply_setup_fee"})
		c.Fields.Add(&core.NumberField{Name: "setup_fee"})
		c.Fields.Add(&core.NumberField{Name: "monthly_price"})
		c.Fields.Add(&core.NumberField{Name: "raw_total"})
		c.Fields.Add(&core.NumberField{Name: "discount_amount"})
		c.Fields.Add(&core.NumberField{Name: "total_price"})
		addLaborDraftFields(c)
		c.Fields.Add(&core.TextField{Name: "blueprint"})
		c.Fields.Add(&core.TextField{Name: "notes"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_quotes_quote_number", true, "quote_number", "")
	})

	solutions := ensureCollection(app, "quote_solutions", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "overhead_percent"})
		c.Fields.Add(&core.NumberField{Name: "contingency_percent"})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
	})

	ensureCollection(app, "quote_labor_lines", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "solution",
			Required:      true,
			CollectionId:  solutions.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "catalog_item_id"})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "quantity"})
		c.Fields.Add(&core.NumberField{Name: "hours_per_unit"})
		c.Fields.Add(&core.NumberField{Name: "rate_per_hour"})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
	})
}

// addLaborDraftFields adds the project-management and adoption parameters
// shared by blueprints and labor quotes.
func addLaborDraftFields(c *core.Collection) {
	c.Fields.Add(&core.NumberField{Name: "project_management_percent"})
	c.Fields.Add(&core.NumberField{Name: "project_management_hours"})
	c.Fields.Add(&core.NumberField{Name: "project_management_rate"})
	c.Fields.Add(&core.NumberField{Name: "adoption_hours"})
	c.Fields.Add(&core.NumberField{Name: "adoption_rate"})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	app.Logger().Info("Created collection", "name", name, "id", collection.Id)
	return collection
}
