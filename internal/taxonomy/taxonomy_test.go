package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Classify(t *testing.T) {
	tax := Default()

	tests := []struct {
		tag      string
		expected string
		ok       bool
	}{
		{"python", "technical", true},
		{"PYTHON", "technical", true},
		{"Machine Learning", "technical", true},
		{"Research", "academic", true},
		{"biology", "academic", true},
		{"startup", "professional", true},
		{"graphic design", "creative", true},
		// Listed under both professional and creative; first declared wins.
		{"portfolio", "professional", true},
		// Keywords match inside words: "ai" is a substring of "painting".
		{"painting", "technical", true},
		{"cooking", "", false},
		{"knitting", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			name, ok := tax.Classify(tt.tag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestClassify_UnicodeCaseFolding(t *testing.T) {
	tax, err := New([]Domain{{Name: "ecology", Keywords: []string{"ÖKO"}}})
	require.NoError(t, err)

	name, ok := tax.Classify("Ökologie")
	assert.True(t, ok)
	assert.Equal(t, "ecology", name)
}

func TestClassify_DeclarationOrderDecides(t *testing.T) {
	first, err := New([]Domain{
		{Name: "a", Keywords: []string{"go"}},
		{Name: "b", Keywords: []string{"golang"}},
	})
	require.NoError(t, err)

	swapped, err := New([]Domain{
		{Name: "b", Keywords: []string{"golang"}},
		{Name: "a", Keywords: []string{"go"}},
	})
	require.NoError(t, err)

	name, _ := first.Classify("golang")
	assert.Equal(t, "a", name)

	name, _ = swapped.Classify("golang")
	assert.Equal(t, "b", name)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		domains []Domain
	}{
		{"empty table", nil},
		{"blank name", []Domain{{Name: "  ", Keywords: []string{"x"}}}},
		{"reserved other", []Domain{{Name: "other", Keywords: []string{"x"}}}},
		{"reserved general", []Domain{{Name: "general", Keywords: []string{"x"}}}},
		{"no keywords", []Domain{{Name: "a"}}},
		{"empty keyword", []Domain{{Name: "a", Keywords: []string{""}}}},
		{"duplicate", []Domain{
			{Name: "a", Keywords: []string{"x"}},
			{Name: "a", Keywords: []string{"y"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.domains)
			assert.Error(t, err)
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	domains := []Domain{{Name: "a", Keywords: []string{"x"}}}
	tax, err := New(domains)
	require.NoError(t, err)

	domains[0].Keywords[0] = "changed"
	got := tax.Domains()
	got[0].Keywords[0] = "also changed"

	assert.Equal(t, []string{"x"}, tax.Domains()[0].Keywords)
}

func TestBucketOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"technical", "academic", "professional", "creative", "other"},
		Default().BucketOrder())
}

func TestBucket(t *testing.T) {
	b := Default().Bucket([]string{"python", "Research", "cooking", "python", "docker"})

	assert.Equal(t, []string{"docker", "python"}, b["technical"])
	assert.Equal(t, []string{"Research"}, b["academic"])
	assert.Equal(t, []string{"cooking"}, b[Other])
	assert.Empty(t, b["professional"])
	assert.Empty(t, b["creative"])
	assert.Len(t, b, 5, "every domain and other are present")

	assert.Equal(t, 4, b.Len())
	assert.Equal(t, []string{"Research", "cooking", "docker", "python"}, b.Flatten())
}

func TestBucket_Empty(t *testing.T) {
	b := Default().Bucket(nil)

	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Flatten())
	assert.Len(t, b, 5)
}
