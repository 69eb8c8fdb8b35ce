// Package aps carries the Attending Physician Statement domain taxonomy:
// the extraction categories queries are grouped under, and the medical
// section types the heuristic classifier recognizes.
package aps

// Category is an extraction category for APS review questions.
type Category string

const (
	Demographics       Category = "demographics"
	Employment         Category = "employment"
	MedicalHistory     Category = "medical_history"
	CurrentMedications Category = "current_medications"
	Allergies          Category = "allergies"
	VitalSigns         Category = "vital_signs"
	PhysicalExam       Category = "physical_exam"
	LabResults         Category = "lab_results"
	ImagingResults     Category = "imaging_results"
	Diagnoses          Category = "diagnoses"
	Procedures         Category = "procedures"
	MentalHealth       Category = "mental_health"
	FunctionalCapacity Category = "functional_capacity"
	TreatmentPlan      Category = "treatment_plan"
	Prognosis          Category = "prognosis"
	PhysicianOpinion   Category = "physician_opinion"
)

// Categories lists all extraction categories in a stable order.
var Categories = []Category{
	Demographics,
	Employment,
	MedicalHistory,
	CurrentMedications,
	Allergies,
	VitalSigns,
	PhysicalExam,
	LabResults,
	ImagingResults,
	Diagnoses,
	Procedures,
	MentalHealth,
	FunctionalCapacity,
	TreatmentPlan,
	Prognosis,
	PhysicianOpinion,
}

// CategoryDescriptions gives each category the prose description included
// in retrieval prompts so the model understands the category's scope.
var CategoryDescriptions = map[Category]string{
	Demographics: "Patient identification: name, date of birth, social security number, " +
		"address, phone number, emergency contacts, insurance information.",
	Employment: "Employment status, occupation, employer name, work schedule, " +
		"job duties, date last worked, disability status.",
	MedicalHistory: "Past medical/surgical history, family history, social history (tobacco, " +
		"alcohol, drug use), review of systems, prior hospitalizations.",
	CurrentMedications: "Active prescriptions, over-the-counter medications, supplements, " +
		"dosages, frequencies, routes of administration, prescribing physicians.",
	Allergies: "Drug allergies, food allergies, environmental allergies, " +
		"adverse drug reactions, allergy severity and reactions.",
	VitalSigns: "Blood pressure, heart rate, respiratory rate, temperature, " +
		"oxygen saturation, weight, height, BMI, pain scale.",
	PhysicalExam: "Physical examination findings by system: general appearance, HEENT, " +
		"cardiovascular, respiratory, abdominal, musculoskeletal, neurological, skin.",
	LabResults: "Laboratory test results: CBC, CMP, lipid panel, thyroid function, " +
		"urinalysis, HbA1c, PSA, liver function tests, coagulation studies.",
	ImagingResults: "Diagnostic imaging findings: X-ray, MRI, CT scan, ultrasound, " +
		"PET scan, bone density scan, echocardiogram, angiography.",
	Diagnoses: "Primary and secondary diagnoses, ICD-10 codes, differential diagnoses, " +
		"chief complaints, date of onset, chronicity.",
	Procedures: "Surgical procedures, non-surgical procedures, biopsies, injections, " +
		"dates performed, findings, complications, outcomes.",
	MentalHealth: "Psychiatric diagnoses, mental status exam, PHQ-9/GAD-7 scores, " +
		"behavioral observations, cognitive assessments, suicide risk.",
	FunctionalCapacity: "Activities of daily living (ADLs), instrumental ADLs, mobility, " +
		"functional capacity evaluation, work restrictions, disability rating.",
	TreatmentPlan: "Recommended treatments, referrals, follow-up schedule, " +
		"physical therapy plan, medication changes, lifestyle modifications.",
	Prognosis: "Expected recovery timeline, disease progression, return-to-work estimate, " +
		"permanent impairment rating, maximum medical improvement date.",
	PhysicianOpinion: "Attending physician's opinion on causation, work-relatedness, " +
		"ability to perform job duties, need for ongoing treatment, " +
		"degree of impairment, future medical needs.",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := CategoryDescriptions[c]
	return ok
}
