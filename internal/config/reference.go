package config

import (
	"fmt"
)

// Alias maps a source spelling of a country onto the canonical join key.
type Alias struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Aliases is an ordered alias table.
type Aliases []Alias

// Resolve returns the canonical name for name, or name itself.
// A validated table never maps onto another source, so Resolve is idempotent.
func (a Aliases) Resolve(name string) string {
	for _, alias := range a {
		if alias.From == name {
			return alias.To
		}
	}
	return name
}

// Validate rejects duplicated sources and chained aliases.
func (a Aliases) Validate() error {
	sources := make(map[string]bool, len(a))
	for _, alias := range a {
		if alias.From == "" || alias.To == "" {
			return fmt.Errorf("alias %q -> %q: empty name", alias.From, alias.To)
		}
		if sources[alias.From] {
			return fmt.Errorf("alias %q defined twice", alias.From)
		}
		sources[alias.From] = true
	}
	for _, alias := range a {
		if alias.From != alias.To && sources[alias.To] {
			return fmt.Errorf("alias %q -> %q: target is itself aliased", alias.From, alias.To)
		}
	}
	return nil
}

// Indicator is a World Bank indicator and the column label it gets.
type Indicator struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
}

// Column labels of the World Bank indicators.
const (
	LabelLifeExpectancy  = "Life expectancy"
	LabelGDPPerCapita    = "GDP per capita"
	LabelUrbanPopulation = "Urban population %"
	LabelRuralPopulation = "Rural population %"
	LabelSlumPopulation  = "Slum population %"
	LabelPopulation      = "Population"
	LabelHealthcareSpend = "GDP Healthcare %"
)

// Reference bundles the lookup tables shared by the processing stages.
// Stages receive it by value and never modify it.
type Reference struct {
	// CaseAliases normalises country names in the JHU case files.
	CaseAliases Aliases `yaml:"case_aliases"`
	// ContinentAliases reconciles datahub names with case data names.
	ContinentAliases Aliases `yaml:"continent_aliases"`
	// Boats are reporting entities that are not countries.
	Boats []string `yaml:"boats"`
	// ExcludedContinents are dropped from the continent table.
	ExcludedContinents []string `yaml:"excluded_continents"`
	// ExcludedCountries are dropped from the combined dataset.
	ExcludedCountries []string `yaml:"excluded_countries"`
	// Indicators lists the World Bank files merged into the combined dataset.
	Indicators []Indicator `yaml:"indicators"`
	// Imputed lists the indicator labels whose gaps are filled with the median.
	Imputed []string `yaml:"imputed"`
}

// Validate checks the alias tables and indicator list
func (r Reference) Validate() error {
	if err := r.CaseAliases.Validate(); err != nil {
		return fmt.Errorf("case aliases: %w", err)
	}
	if err := r.ContinentAliases.Validate(); err != nil {
		return fmt.Errorf("continent aliases: %w", err)
	}
	labels := make(map[string]bool, len(r.Indicators))
	for _, ind := range r.Indicators {
		if ind.Code == "" || ind.Label == "" {
			return fmt.Errorf("indicator %q: code and label are required", ind.Code)
		}
		if labels[ind.Label] {
			return fmt.Errorf("indicator label %q used twice", ind.Label)
		}
		labels[ind.Label] = true
	}
	for _, label := range r.Imputed {
		if !labels[label] {
			return fmt.Errorf("imputed column %q is not an indicator", label)
		}
	}
	return nil
}

// IsBoat reports whether name is an excluded boat entity
func (r Reference) IsBoat(name string) bool {
	return contains(r.Boats, name)
}

// IsExcludedContinent reports whether continent is dropped
func (r Reference) IsExcludedContinent(continent string) bool {
	return contains(r.ExcludedContinents, continent)
}

// IsExcludedCountry reports whether country is dropped from the combined dataset
func (r Reference) IsExcludedCountry(country string) bool {
	return contains(r.ExcludedCountries, country)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DefaultReference returns the lookup tables for the JHU, datahub and
// World Bank sources.
func DefaultReference() Reference {
	return Reference{
		CaseAliases: Aliases{
			{From: "Taiwan*", To: "Taiwan"},
			{From: "Korea, South", To: "Korea"},
			{From: "North Macedonia", To: "Macedonia"},
			{From: "Cabo Verde", To: "Cape Verde"},
			{From: "Congo (Brazzaville)", To: "Congo"},
			{From: "Congo (Kinshasa)", To: "Congo"},
		},
		ContinentAliases: Aliases{
			{From: "Russian Federation", To: "Russia"},
			{From: "Slovakia (Slovak Republic)", To: "Slovakia"},
			{From: "Kyrgyz Republic", To: "Kyrgyzstan"},
			{From: "Syrian Arab Republic", To: "Syria"},
			{From: "Libyan Arab Jamahiriya", To: "Libya"},
			{From: "Korea, South", To: "Korea"},
			{From: "Brunei Darussalam", To: "Brunei"},
			{From: "Cabo Verde", To: "Cape Verde"},
			{From: "Holy See (Vatican City State)", To: "Holy See"},
			{From: "United States of America", To: "US"},
			{From: "United Kingdom of Great Britain & Northern Ireland", To: "United Kingdom"},
			{From: "Lao People's Democratic Republic", To: "Laos"},
			{From: "Myanmar", To: "Burma"},
			{From: "Czech Republic", To: "Czechia"},
			{From: "Swaziland", To: "Eswatini"},
		},
		Boats:              []string{"Diamond Princess", "MS Zaandam"},
		ExcludedContinents: []string{"Antarctica"},
		ExcludedCountries:  []string{"Yemen"},
		Indicators: []Indicator{
			{Code: "SP.DYN.LE00.IN", Label: LabelLifeExpectancy},
			{Code: "NY.GDP.PCAP.PP.CD", Label: LabelGDPPerCapita},
			{Code: "SP.URB.TOTL.IN.ZS", Label: LabelUrbanPopulation},
			{Code: "SP.RUR.TOTL.ZS", Label: LabelRuralPopulation},
			{Code: "EN.POP.SLUM.UR.ZS", Label: LabelSlumPopulation},
			{Code: "SP.POP.TOTL", Label: LabelPopulation},
			{Code: "SH.XPD.CHEX.GD.ZS", Label: LabelHealthcareSpend},
		},
		Imputed: []string{LabelLifeExpectancy, LabelHealthcareSpend, LabelGDPPerCapita},
	}
}
