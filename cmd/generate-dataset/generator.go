package main

import (
	"math"
	"math/rand/v2"
	"strconv"

	"epldash/pkg/contracts/domain"
)

var (
	departments = []string{"Informatique", "Maths", "Physique", "Chimie", "Biologie", "Génie Civil"}
	units       = []string{"UE1", "UE2", "UE3", "UE4"}
	subjects    = map[string][]string{
		"UE1": {"Python", "Algèbre", "Mécanique"},
		"UE2": {"Statistiques", "Analyse", "Thermodynamique"},
		"UE3": {"Bases de données", "Probabilités", "Électronique"},
		"UE4": {"Machine Learning", "Topologie", "Chimie Organique"},
	}
	instructors = []string{"Prof A", "Prof B", "Prof C", "Prof D", "Prof E"}
	sexes       = []string{"F", "M"}
)

// reportCards assigns the first two units to the first semester
var reportCards = map[string]string{"UE1": "S1", "UE2": "S1", "UE3": "S2", "UE4": "S2"}

const (
	scoreMean   = 12.0
	scoreStdDev = 3.0
	minAge      = 18
	maxAge      = 25
)

// Options controls the synthetic dataset
type Options struct {
	Students     int
	Seed         uint64
	WithOptional bool
}

// Schema returns the columns written for opts
func (o Options) Schema() domain.Schema {
	schema := append(domain.Schema(nil), domain.RequiredColumns...)
	if o.WithOptional {
		schema = append(schema, domain.OptionalColumns...)
	}
	return schema
}

// Generate draws one department per student and one record per subject,
// with an instructor picked at random and a score from N(12, 3) clipped to
// [0, 20] and rounded to two decimals. The same seed yields the same dataset.
func Generate(opts Options) []domain.Record {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	perStudent := 0
	for _, u := range units {
		perStudent += len(subjects[u])
	}
	records := make([]domain.Record, 0, opts.Students*perStudent)

	for id := 1; id <= opts.Students; id++ {
		studentID := strconv.Itoa(id)
		department := departments[rng.IntN(len(departments))]

		var age float64
		var sex string
		if opts.WithOptional {
			age = float64(minAge + rng.IntN(maxAge-minAge+1))
			sex = sexes[rng.IntN(len(sexes))]
		}

		for _, unit := range units {
			for _, subject := range subjects[unit] {
				r := domain.Record{
					StudentID:  studentID,
					Department: department,
					Unit:       unit,
					Subject:    subject,
					Instructor: instructors[rng.IntN(len(instructors))],
					Score:      drawScore(rng),
				}
				if opts.WithOptional {
					a := age
					r.Age = &a
					r.Sex = domain.StringPtr(sex)
					r.ReportCard = domain.StringPtr(reportCards[unit])
				}
				records = append(records, r)
			}
		}
	}
	return records
}

func drawScore(rng *rand.Rand) float64 {
	score := rng.NormFloat64()*scoreStdDev + scoreMean
	score = math.Min(math.Max(score, domain.MinScore), domain.MaxScore)
	return math.Round(score*100) / 100
}
