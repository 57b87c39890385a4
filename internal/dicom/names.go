package dicom

import "math/rand/v2"

// frenchNameShare is the fraction of sample patients given a French name.
const frenchNameShare = 0.20

var (
	englishMaleNames   = []string{"James", "John", "Robert", "Michael", "William", "David", "Thomas", "Daniel", "Andrew", "Kevin"}
	englishFemaleNames = []string{"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Susan", "Sarah", "Karen", "Emily", "Laura"}
	englishLastNames   = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Miller", "Davis", "Wilson", "Taylor", "Clark"}

	frenchMaleNames   = []string{"Jean", "Pierre", "Michel", "André", "François", "Nicolas", "Julien", "Mathieu"}
	frenchFemaleNames = []string{"Marie", "Nathalie", "Isabelle", "Sophie", "Camille", "Hélène", "Céline", "Claire"}
	frenchLastNames   = []string{"Martin", "Bernard", "Dubois", "Lefevre", "Mercier", "Dupont", "Garnier", "Rousseau"}
)

// samplePatient returns a DICOM person name (LAST^FIRST) and a sex code drawn from rng.
func samplePatient(rng *rand.Rand) (name, sex string) {
	sex = "F"
	if rng.IntN(2) == 0 {
		sex = "M"
	}

	first, last := englishFemaleNames, englishLastNames
	switch french := rng.Float64() < frenchNameShare; {
	case french && sex == "M":
		first, last = frenchMaleNames, frenchLastNames
	case french:
		first, last = frenchFemaleNames, frenchLastNames
	case sex == "M":
		first = englishMaleNames
	}
	return last[rng.IntN(len(last))] + "^" + first[rng.IntN(len(first))], sex
}
