package legacy

// SeedDocument returns the starter data set written when no document exists.
// Entries are pre-migration: they carry coverage figures but no agents.
func SeedDocument() *Document {
	return &Document{
		Condominiums: []Condominium{
			{ID: 1, Name: "Condomínio Parque Verde", Team: "equipe1", Towers: 3, Apartments: 120, Residents: 420, Hypertensive: 45, Diabetic: 28, Pregnant: 12, Coverage: 85, Priority: "alta", LastVisit: "2024-01-15"},
			{ID: 2, Name: "Residencial São José", Team: "equipe1", Towers: 2, Apartments: 80, Residents: 280, Hypertensive: 32, Diabetic: 18, Pregnant: 8, Coverage: 90, Priority: "media", LastVisit: "2024-01-10"},
			{ID: 3, Name: "Edifício Central Park", Team: "equipe2", Towers: 4, Apartments: 160, Residents: 560, Hypertensive: 60, Diabetic: 35, Pregnant: 15, Coverage: 75, Priority: "alta", LastVisit: "2024-01-12"},
			{ID: 4, Name: "Condomínio Solar das Flores", Team: "equipe2", Towers: 2, Apartments: 60, Residents: 210, Hypertensive: 25, Diabetic: 12, Pregnant: 6, Coverage: 95, Priority: "baixa", LastVisit: "2024-01-14"},
			{ID: 5, Name: "Residencial Alto da Serra", Team: "equipe3", Towers: 3, Apartments: 90, Residents: 315, Hypertensive: 28, Diabetic: 15, Pregnant: 7, Coverage: 80, Priority: "media", LastVisit: "2024-01-13"},
			{ID: 6, Name: "Condomínio Vista Alegre", Team: "equipe3", Towers: 2, Apartments: 70, Residents: 245, Hypertensive: 20, Diabetic: 10, Pregnant: 4, Coverage: 88, Priority: "baixa", LastVisit: "2024-01-11"},
		},
		Agents: []Agent{},
	}
}
