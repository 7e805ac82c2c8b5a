// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"phi-scrub/internal/detector"
	"phi-scrub/internal/lookup"
	"phi-scrub/internal/tags"
)

// BuildDetectors constructs the detectors enabled in enabledCategories, in
// the order they must run. Name tagging is not a detector and is toggled
// separately by the NAMES category. An empty patientID adds no identifier
// detector.
func BuildDetectors(enabledCategories map[string]bool, lists *lookup.Lists, patientID string) []detector.Detector {
	var result []detector.Detector

	if enabledCategories["INSTITUTIONS"] {
		result = append(result, detector.NewInstitutionDetector(lists))
	}
	if enabledCategories["LOCATIONS"] {
		// Belgian postal codes need the place name after them, so they run
		// before residences tag it.
		result = append(result,
			detector.NewAddressDetector(),
			detector.NewPostalCodeDetector(),
			detector.NewResidenceDetector(lists),
		)
	}

	var places []string
	if enabledCategories["INSTITUTIONS"] {
		places = append(places, tags.Institution)
	}
	if enabledCategories["LOCATIONS"] {
		places = append(places, tags.Location)
	}
	if len(places) > 0 {
		result = append(result, detector.NewPlaceNameDetector(places...))
	}
	if enabledCategories["PHONE_NUMBERS"] {
		result = append(result, detector.NewPhoneDetector())
	}
	if enabledCategories["PATIENT_NUMBERS"] {
		if d := detector.NewPatientIDDetector(patientID); d != nil {
			result = append(result, d)
		}
		result = append(result, detector.NewPatientNumberDetector())
	}
	if enabledCategories["DATES"] {
		result = append(result, detector.NewDateDetector())
	}
	if enabledCategories["AGES"] {
		result = append(result, detector.NewAgeDetector())
	}
	if enabledCategories["URLS"] {
		result = append(result, detector.NewEmailDetector(), detector.NewURLDetector())
	}

	return result
}
