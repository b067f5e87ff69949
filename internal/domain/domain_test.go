package domain

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersona(t *testing.T) {
	tests := []struct {
		in   string
		want Persona
		ok   bool
	}{
		{"", PersonaPublic, true},
		{"presales", PersonaPresales, true},
		{" SALES_MANAGER ", PersonaSalesManager, true},
		{"SALES_ADMIN", PersonaSalesAdmin, true},
		{"root", PersonaPublic, false},
	}
	for _, tt := range tests {
		got, ok := ParsePersona(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestSections(t *testing.T) {
	assert.Equal(t, []string{SectionProducts}, Sections(PersonaPublic))
	assert.Equal(t, []string{SectionProducts, SectionDashboard}, Sections(PersonaPresales))
	assert.Equal(t, []string{SectionProducts, SectionDashboard}, Sections(PersonaSalesManager))
	assert.Equal(t, []string{SectionProducts, SectionDashboard, SectionAdmin}, Sections(PersonaSalesAdmin))
}

func TestFilterProducts(t *testing.T) {
	all := DefaultProducts()

	ids := func(ps []Product) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	assert.NotContains(t, ids(FilterProducts(PersonaPublic, all, "", "")), "adv-gpu")
	assert.Contains(t, ids(FilterProducts(PersonaPresales, all, "", "")), "adv-gpu")

	assert.Equal(t, []string{"db-postgres"}, ids(FilterProducts(PersonaPublic, all, "", "Databases")))
	// поиск игнорирует категорию
	assert.Equal(t, []string{"storage-blob"}, ids(FilterProducts(PersonaPublic, all, "OBJECT", "Compute")))
	assert.Equal(t, []string{"adv-gpu"}, ids(FilterProducts(PersonaSalesAdmin, all, "machine learning", "")))
	assert.Empty(t, FilterProducts(PersonaPublic, all, "gpu", ""))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(QuoteStatusDraft, QuoteStatusFinal))
	assert.True(t, CanTransition(QuoteStatusDraft, QuoteStatusPendingApproval))
	assert.True(t, CanTransition(QuoteStatusPendingApproval, QuoteStatusApproved))
	assert.True(t, CanTransition(QuoteStatusPendingApproval, QuoteStatusRejected))
	assert.True(t, CanTransition(QuoteStatusApproved, QuoteStatusApproved))

	assert.False(t, CanTransition(QuoteStatusDraft, QuoteStatusApproved))
	assert.False(t, CanTransition(QuoteStatusApproved, QuoteStatusDraft))
	assert.False(t, CanTransition(QuoteStatusFinal, QuoteStatusDraft))
}

func TestQuoteAccess(t *testing.T) {
	draft := &Quote{Status: QuoteStatusDraft, CreatedBy: PersonaPublic}
	final := &Quote{Status: QuoteStatusFinal, CreatedBy: PersonaPresales}

	assert.True(t, QuoteVisible(PersonaPublic, draft))
	assert.False(t, QuoteVisible(PersonaPublic, final))
	assert.True(t, QuoteVisible(PersonaSalesManager, final))

	assert.True(t, CanEditQuote(PersonaPublic, draft))
	assert.False(t, CanEditQuote(PersonaPublic, final))
	assert.True(t, CanEditQuote(PersonaPresales, final))
}

func TestQuoteTotals(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	q := &Quote{TotalEstimate: 100, DiscountValue: 30, CreatedAt: created}
	assert.Equal(t, 70.0, q.NetTotal())
	assert.Equal(t, created.Add(30*24*time.Hour), q.ValidUntil())

	q.DiscountValue = 150
	assert.Equal(t, 0.0, q.NetTotal())
}

func TestQuoteIDs(t *testing.T) {
	id := NewQuoteID()
	assert.Regexp(t, `^QT-[0-9A-F]{5}$`, id)

	local := NewLocalQuoteID()
	assert.Regexp(t, `^QT-LOC-[1-9][0-9]{3}$`, local)
	assert.True(t, IsLocalQuoteID(local))
	assert.False(t, IsLocalQuoteID(id))

	assert.Len(t, GeneratePublicToken(), 32)
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats([]*Quote{
		{TotalEstimate: 100, Status: QuoteStatusDraft},
		{TotalEstimate: 50, Status: QuoteStatusPendingApproval},
		{TotalEstimate: 25, Status: QuoteStatusApproved},
	})
	assert.Equal(t, QuoteStats{Total: 3, TotalValue: 175, Drafts: 1, Pending: 1}, s)
}

func TestConfigValueJSON(t *testing.T) {
	var sel Selections
	require.NoError(t, json.Unmarshal([]byte(`{"Operating System":"windows","Nodes":4,"Empty":null}`), &sel))

	assert.Equal(t, "windows", sel["Operating System"].String())
	assert.False(t, sel["Operating System"].IsNum)
	assert.True(t, sel["Nodes"].IsNum)
	assert.Equal(t, "4", sel["Nodes"].String())

	b, err := json.Marshal(Selections{"Nodes": NumberValue(2.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Nodes":2.5}`, string(b))

	var v ConfigValue
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &v))

	assert.True(t, ParseConfigValue("12").IsNum)
	assert.False(t, ParseConfigValue("linux").IsNum)
	assert.False(t, ParseConfigValue("NaN").IsNum)
}

func TestConfigValueFloatRejectsNonFinite(t *testing.T) {
	for _, s := range []string{"NaN", "nan", "Inf", "-Inf", "+Infinity"} {
		_, ok := StringValue(s).Float()
		assert.False(t, ok, s)
	}
	_, ok := NumberValue(math.NaN()).Float()
	assert.False(t, ok)
	_, ok = NumberValue(math.Inf(1)).Float()
	assert.False(t, ok)

	f, ok := StringValue(" 12.5 ").Float()
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)
}

func TestContactValidate(t *testing.T) {
	ok := ContactDetails{FullName: "John", Organization: "Acme", Mobile: "123", Email: "john@acme.com"}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Organization = " "
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, strings.Contains(err.Error(), "organization"))

	bad = ok
	bad.Email = "not-an-email"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidInput)
}

func TestRuleValidate(t *testing.T) {
	w := WorkflowRule{Name: "High", Condition: ConditionTotalValue, Threshold: 1000, Approver: PersonaSalesManager}
	require.NoError(t, w.Validate())

	w.Condition = "weather"
	assert.ErrorIs(t, w.Validate(), ErrInvalidInput)

	w.Condition = ConditionItemValue
	w.Approver = PersonaPublic
	assert.ErrorIs(t, w.Validate(), ErrInvalidInput)

	c := ConfigRule{Name: "Req", ProductID: "vm-basic", Action: RuleActionDisable}
	require.NoError(t, c.Validate())
	c.Action = "EXPLODE"
	assert.ErrorIs(t, c.Validate(), ErrInvalidInput)
}
