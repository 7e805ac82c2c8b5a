// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"regexp"
	"strings"

	"phi-scrub/internal/lookup"
	"phi-scrub/internal/tags"
)

const (
	dutchMonths  = `januari|februari|maart|april|mei|juni|juli|augustus|september|oktober|november|december`
	frenchMonths = `janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre`
	weekdays     = `maandag|dinsdag|woensdag|donderdag|vrijdag|zaterdag|zondag|lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche`
	urlTail      = `[^\s<>]*[^\s<>.,;:!?)"']`
)

var (
	pagePrefix   = regexp.MustCompile(`(?i)\bpage\s?:?\s?$`)
	unitSuffix   = regexp.MustCompile(`^\.?\d?\s?(?:m|mc|µ|c)(?:l|g)`)
	examenPrefix = regexp.MustCompile(`(?i)\bexamen\s$`)
)

// NewDateDetector tags numeric dates, dates with month names and bare
// years. Numbers preceded by "Page" are left alone.
func NewDateDetector() *PatternDetector {
	reject := func(text string, start, _ int) bool {
		return pagePrefix.MatchString(text[:start])
	}
	return NewPatternDetector("dates", tags.Date,
		Pattern{Regexp: regexp.MustCompile(`\b(?:0?[1-9]|[12]\d|3[01])\s?/\s?(?:0?[1-9]|1[0-2])(?:\s?/\s?(?:19|20)?\d{2})?\b`), Reject: reject},
		Pattern{Regexp: regexp.MustCompile(`\b(?:0?[1-9]|[12]\d|3[01])\s?[.-]\s?(?:0?[1-9]|1[0-2])\s?[.-]\s?(?:\d{4}|\d{2})\b`), Reject: reject},
		Pattern{Regexp: regexp.MustCompile(`(?i)\b(?:(?:` + weekdays + `),?\s)?\d{1,2}[\s.-]{0,2}(?:` + dutchMonths + `|` + frenchMonths + `)(?:[\s./-]{1,2}(?:\d{4}|\d{2}))?\b`)},
		Pattern{Regexp: regexp.MustCompile(`(?i)\b(?:` + dutchMonths + `|` + frenchMonths + `)\s(?:19|20)\d{2}\b`)},
		Pattern{Regexp: regexp.MustCompile(`\b(?:19|20)\d{2}\b`), Reject: reject},
	)
}

// NewAgeDetector tags the number in "64 jaar", "64-jarige" and "64 ans".
func NewAgeDetector() *PatternDetector {
	return NewPatternDetector("ages", tags.Age,
		Pattern{Regexp: regexp.MustCompile(`\b(\d{1,3})[ -](?:jarige|jarig|jaar|ans)\b`), Group: 1},
	)
}

// NewPhoneDetector tags Belgian, Dutch and generic ten digit phone numbers.
func NewPhoneDetector() *PatternDetector {
	return NewPatternDetector("phone_numbers", tags.PhoneNumber,
		Pattern{Regexp: regexp.MustCompile(`(?:\(?(?:\+|\b00)32 ?(?:\(0\) ?)?|\(?\b0)(?:4(?:60|[789]\d)/?(?:\s?\d{2}\.?){2}\s?\d{2}|(?:\d/?\)?\s?\d{3}|\d{2}/?\s?\d{2})(?:\.?\s?\d{2}){2})\b`)},
		Pattern{Regexp: regexp.MustCompile(`(?:\b0[1-9]{2}\d-?[1-9]\d{5}|(?:\+31|\b0031|\b0)[1-9]\d-?[1-9]\d{6})\b`)},
		Pattern{Regexp: regexp.MustCompile(`(?:\+31|\b0031|\b0)6-?[1-9]\d{7}\b`)},
		Pattern{Regexp: regexp.MustCompile(`(?:\(\d{3}\)|\b\d{3})\s?\d{3}\s?\d{2}\s?\d{2}\b`)},
	)
}

// NewPatientNumberDetector tags runs of seven to nine digits.
func NewPatientNumberDetector() *PatternDetector {
	return NewPatternDetector("patient_numbers", tags.PatientNumber,
		Pattern{Regexp: regexp.MustCompile(`\b\d{7,9}\b`)},
	)
}

// NewPatientIDDetector tags literal occurrences of a patient identifier,
// ignoring case. Identifiers shorter than four characters return nil.
func NewPatientIDDetector(id string) *PatternDetector {
	id = strings.TrimSpace(id)
	if len(id) < 4 {
		return nil
	}
	return NewPatternDetector("patient_id", tags.PatientNumber,
		Pattern{Regexp: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(id))},
	)
}

// NewPostalCodeDetector tags Dutch postal codes, Belgian postal codes
// followed by a place name, and PO boxes. Dosages such as "1000mg" are not
// postal codes.
func NewPostalCodeDetector() *PatternDetector {
	return NewPatternDetector("postal_codes", tags.Location,
		Pattern{Regexp: regexp.MustCompile(`\b(?:\d{4} [A-Z]{2}|\d{4}[a-zA-Z]{2})\b`), Reject: isDosage},
		Pattern{Regexp: regexp.MustCompile(`\b([1-9]\d{3})\s+\p{Lu}`), Group: 1, Reject: isDosage},
		Pattern{Regexp: regexp.MustCompile(`\b[Pp]ostbus\s\d{4,5}\b`)},
	)
}

func isDosage(text string, start, end int) bool {
	match := strings.ToLower(text[start:end])
	for _, unit := range []string{"mg", "ml", "cg", "cl"} {
		if strings.HasSuffix(match, unit) {
			return true
		}
	}
	return unitSuffix.MatchString(text[end:])
}

// NewAddressDetector tags Dutch street names with an optional house number
// and French street addresses.
func NewAddressDetector() *PatternDetector {
	return NewPatternDetector("addresses", tags.Location,
		Pattern{Regexp: regexp.MustCompile(`\b\p{Lu}\p{L}+(?:straat|laan|hof|plein|plantsoen|gracht|kade|weg|steeg|pad|dijk|baan|dam|dreef|markt|park|singel|bolwerk)(?:\s\d{1,6}[a-zA-Z]{0,2})?\b`)},
		Pattern{Regexp: regexp.MustCompile(`(?:\b\d{1,6}[a-zA-Z]{0,2},?\s)?\b(?i:rue|avenue|chaussée|chemin|allée|route|quai|square|boulevard|drève|impasse|promenade)\s(?:(?i:de|du|des|la|le|les)\s|(?i:d'|l'))*\p{Lu}[\p{L}'-]*(?:,?\s\d{1,6}[a-zA-Z]{0,2}\b)?`)},
	)
}

// NewEmailDetector tags e-mail addresses.
func NewEmailDetector() *PatternDetector {
	return NewPatternDetector("emails", tags.URL,
		Pattern{Regexp: regexp.MustCompile(`(?i)\b[\w.+-]+@(?:[\w-]+\.)+[a-z]{2,6}\b`)},
	)
}

// NewURLDetector tags scheme-prefixed links and bare domains under common
// top level domains.
func NewURLDetector() *PatternDetector {
	return NewPatternDetector("urls", tags.URL,
		Pattern{Regexp: regexp.MustCompile(`(?i)\b(?:https?|ftp)://` + urlTail)},
		Pattern{Regexp: regexp.MustCompile(`(?i)\b[\w-]+(?:\.[\w-]+)*\.(?:nl|com|net|be|org|eu)\b(?:/` + urlTail + `)?`)},
	)
}

// NewInstitutionDetector tags institution names from the lists. "clinique"
// in the French "examen clinique" is an examination, not a clinic.
func NewInstitutionDetector(lists *lookup.Lists) *DictionaryDetector {
	d := NewDictionaryDetector("institutions", tags.Institution, lists.Institutions, false)
	d.reject = func(text string, start, _ int) bool {
		return examenPrefix.MatchString(text[:start]) && strings.HasPrefix(strings.ToLower(text[start:]), "clinique")
	}
	return d
}

// NewResidenceDetector tags capitalised place names from the lists.
func NewResidenceDetector(lists *lookup.Lists) *DictionaryDetector {
	return NewDictionaryDetector("residences", tags.Location, lists.Residences, true)
}
