package services_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotedesk/services"
	"quotedesk/testhelpers"
)

func TestCommitCatalogImport(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	csv := "Name,Hours Per Unit,Rate Per Hour,Unit Price,Section\n" +
		"Site survey,8,140,,Discovery\n" +
		"Rack and stack,2,125,300,Install\n"
	result, err := services.ParseCatalogFile(strings.NewReader(csv), "catalog.csv")
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	n, err := services.CommitCatalogImport(app, result.Items)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	survey, err := app.FindFirstRecordByData("labor_items", "name", "Site survey")
	require.NoError(t, err)
	assert.Equal(t, 1120.0, survey.GetFloat("unit_price"))
	assert.False(t, survey.GetBool("unit_price_override"))
	assert.Equal(t, "Discovery", survey.GetString("section"))

	rack, err := app.FindFirstRecordByData("labor_items", "name", "Rack and stack")
	require.NoError(t, err)
	assert.Equal(t, 300.0, rack.GetFloat("unit_price"))
	assert.True(t, rack.GetBool("unit_price_override"))
}

func TestCommitCatalogImport_RollsBackOnFailure(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	items := []services.LaborCatalogItem{
		{Name: "Valid", HoursPerUnit: decimal.NewFromInt(1), RatePerHour: decimal.NewFromInt(100)},
		{Name: "", HoursPerUnit: decimal.NewFromInt(1), RatePerHour: decimal.NewFromInt(100)},
	}
	_, err := services.CommitCatalogImport(app, items)
	require.Error(t, err)

	records, err := app.FindAllRecords("labor_items")
	require.NoError(t, err)
	assert.Empty(t, records)
}
