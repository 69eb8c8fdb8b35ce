package aps

import "regexp"

// SectionType identifies the kind of medical record a document section is.
type SectionType string

const (
	FaceSheet        SectionType = "face_sheet"
	ProgressNote     SectionType = "progress_note"
	LabReport        SectionType = "lab_report"
	Imaging          SectionType = "imaging"
	Pathology        SectionType = "pathology"
	OperativeReport  SectionType = "operative_report"
	DischargeSummary SectionType = "discharge_summary"
	Consultation     SectionType = "consultation"
	MedicationList   SectionType = "medication_list"
	VitalSignsRecord SectionType = "vital_signs"
	NursingNote      SectionType = "nursing_note"
	TherapyNote      SectionType = "therapy_note"
	MentalHealthNote SectionType = "mental_health"
	Dental           SectionType = "dental"
	Unknown          SectionType = "unknown"
)

// sectionOrder fixes the pattern evaluation order so classification is
// deterministic when a title matches multiple types.
var sectionOrder = []SectionType{
	FaceSheet,
	ProgressNote,
	LabReport,
	Imaging,
	Pathology,
	OperativeReport,
	DischargeSummary,
	Consultation,
	MedicationList,
	VitalSignsRecord,
	NursingNote,
	TherapyNote,
	MentalHealthNote,
	Dental,
}

// sectionPatterns matches common section titles and headers in APS
// documents. Heuristic matching handles most pages; the LLM fallback only
// fires for ambiguous titles.
var sectionPatterns = map[SectionType][]*regexp.Regexp{
	FaceSheet: {
		regexp.MustCompile(`(?i)\bface\s*sheet\b`),
		regexp.MustCompile(`(?i)\bpatient\s+demographics?\b`),
		regexp.MustCompile(`(?i)\badmission\s+data\b`),
		regexp.MustCompile(`(?i)\bregistration\s+form\b`),
	},
	ProgressNote: {
		regexp.MustCompile(`(?i)\bprogress\s+note`),
		regexp.MustCompile(`(?i)\bclinic(?:al)?\s+note`),
		regexp.MustCompile(`(?i)\boffice\s+visit\b`),
		regexp.MustCompile(`(?i)\bsoap\s+note\b`),
		regexp.MustCompile(`(?i)\bfollow[\s-]?up\s+note\b`),
	},
	LabReport: {
		regexp.MustCompile(`(?i)\blab(?:oratory)?\s+(?:report|result)`),
		regexp.MustCompile(`(?i)\bblood\s+(?:test|work|panel)`),
		regexp.MustCompile(`\b(?:CBC|CMP|BMP|UA)\b`),
		regexp.MustCompile(`(?i)\bcomplete\s+blood\s+count\b`),
		regexp.MustCompile(`(?i)\bchemistry\s+panel\b`),
	},
	Imaging: {
		regexp.MustCompile(`(?i)\b(?:imaging|radiology)\s+report\b`),
		regexp.MustCompile(`(?i)\b(?:MRI|CT|X-?ray|ultrasound)\s`),
		regexp.MustCompile(`(?i)\bradiolog(?:y|ist)\b`),
	},
	Pathology: {
		regexp.MustCompile(`(?i)\bpathology\s+report\b`),
		regexp.MustCompile(`(?i)\bbiopsy\s+report\b`),
		regexp.MustCompile(`(?i)\bhistopatholog`),
		regexp.MustCompile(`(?i)\bcytolog(?:y|ical)\b`),
	},
	OperativeReport: {
		regexp.MustCompile(`(?i)\boperative\s+(?:report|note)\b`),
		regexp.MustCompile(`(?i)\bsurgical\s+(?:report|note)\b`),
		regexp.MustCompile(`(?i)\bprocedure\s+(?:report|note)\b`),
		regexp.MustCompile(`(?i)\bop[\s-]?note\b`),
	},
	DischargeSummary: {
		regexp.MustCompile(`(?i)\bdischarge\s+summar`),
		regexp.MustCompile(`(?i)\bdischarge\s+note\b`),
		regexp.MustCompile(`(?i)\bdischarge\s+instruction`),
	},
	Consultation: {
		regexp.MustCompile(`(?i)\bconsult(?:ation)?\s+(?:report|note)\b`),
		regexp.MustCompile(`(?i)\breferral\s+(?:report|note)\b`),
		regexp.MustCompile(`(?i)\bspecialist\s+consult`),
	},
	MedicationList: {
		regexp.MustCompile(`(?i)\bmedication\s+(?:list|record|reconciliation)\b`),
		regexp.MustCompile(`(?i)\bprescription\s+(?:list|record|history)\b`),
		regexp.MustCompile(`(?i)\bmed(?:ication)?\s+reconcil`),
		regexp.MustCompile(`(?i)\bcurrent\s+medication`),
	},
	VitalSignsRecord: {
		regexp.MustCompile(`(?i)\bvital\s+signs?\b`),
		regexp.MustCompile(`(?i)\bvitals?\b`),
		regexp.MustCompile(`\bTPR\b`),
	},
	NursingNote: {
		regexp.MustCompile(`(?i)\bnursing\s+(?:note|assessment|record)\b`),
		regexp.MustCompile(`(?i)\bnurse(?:'s)?\s+note\b`),
	},
	TherapyNote: {
		regexp.MustCompile(`(?i)\b(?:physical|occupational|speech)\s+therap`),
		regexp.MustCompile(`(?i)\brehabilitation\s+note\b`),
		regexp.MustCompile(`\bPT\s+note\b`),
		regexp.MustCompile(`\bOT\s+note\b`),
	},
	MentalHealthNote: {
		regexp.MustCompile(`(?i)\bpsychiat`),
		regexp.MustCompile(`(?i)\bpsycholog`),
		regexp.MustCompile(`(?i)\bmental\s+health\b`),
		regexp.MustCompile(`(?i)\bbehavioral\s+health\b`),
	},
	Dental: {
		regexp.MustCompile(`(?i)\bdental\s+(?:exam|record|note|report)\b`),
		regexp.MustCompile(`(?i)\bodontolog`),
	},
}
