package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotedesk/config"
	"quotedesk/services"
)

const sampleBudget = `
catalog:
  - id: survey
    name: Site survey
    hoursPerUnit: 8
    ratePerHour: 140
  - id: ap
    name: Access point install
    hoursPerUnit: 1.5
    ratePerHour: 100
solutions:
  - name: Wi-Fi
    overheadPercent: 10
    contingencyPercent: 5
    items:
      - catalogItemId: survey
        quantity: 1
      - catalogItemId: ap
        quantity: 10
      - catalogItemId: gone
        quantity: 3
projectManagement:
  percent: 10
adoption:
  hours: 4
  rate: 120
`

func runCalc(t *testing.T, args ...string) string {
	t.Helper()
	cfg := config.Defaults()
	cmd := newCalcCommand(&cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestReadBudgetFile(t *testing.T) {
	draft, unresolved, err := readBudgetFile(strings.NewReader(sampleBudget))
	require.NoError(t, err)
	assert.Equal(t, []string{"gone"}, unresolved)
	require.Len(t, draft.Solutions, 1)
	assert.Len(t, draft.Solutions[0].Items, 2)

	b := services.CalcLaborBudget(draft)
	// 1120 + 1500 = 2620, +10% +5% = 3013
	assert.Equal(t, "3013", b.LaborSubtotal.String())
	assert.Equal(t, "301.3", b.ProjectManagementCost.String())
	assert.Equal(t, "480", b.AdoptionCost.String())
	assert.Equal(t, "3794.3", b.GrandTotal.String())
	assert.Equal(t, "27", b.TotalHours.String())
}

func TestReadBudgetFile_UnknownField(t *testing.T) {
	_, _, err := readBudgetFile(strings.NewReader("solutionz: []\n"))
	assert.Error(t, err)
}

func TestReadBudgetFile_NegativeRate(t *testing.T) {
	_, _, err := readBudgetFile(strings.NewReader("catalog:\n  - id: x\n    hoursPerUnit: 1\n    ratePerHour: -5\n"))
	assert.Error(t, err)
}

func TestCalcPriceCommand(t *testing.T) {
	out := runCalc(t, "price", "--cost", "100", "--margin", "25")
	assert.Equal(t, "$100.00 at 25% margin = $125.00\n", out)
}

func TestCalcPriceCommand_InvalidCost(t *testing.T) {
	cfg := config.Defaults()
	cmd := newCalcCommand(&cfg)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"price", "--cost", "abc"})
	assert.Error(t, cmd.Execute())
}

func TestCalcMSPCommand(t *testing.T) {
	out := runCalc(t, "msp", "--basePrice", "10", "--quantity", "2", "--months", "12",
		"--discount", "10", "--setupFee", "500", "--applySetupFee")
	assert.Contains(t, out, "$20.00")
	assert.Contains(t, out, "$240.00")
	assert.Contains(t, out, "-$24.00")
	assert.Contains(t, out, "$716.00")
}

func TestCalcMSPCommand_ShortContractNoDiscount(t *testing.T) {
	out := runCalc(t, "msp", "--basePrice", "10", "--quantity", "2", "--months", "11", "--discount", "10")
	assert.NotContains(t, out, "Annual discount")
	assert.Contains(t, out, "$220.00")
}

func TestWriteLaborBudget(t *testing.T) {
	draft, _, err := readBudgetFile(strings.NewReader(sampleBudget))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeLaborBudget(&buf, draft, "$"))
	out := buf.String()
	assert.Contains(t, out, "Wi-Fi")
	assert.Contains(t, out, "$3,013.00")
	assert.Contains(t, out, "$3,794.30")
}
