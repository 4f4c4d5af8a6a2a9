// Package drugs holds the static medicine catalog and resolves scanned QR
// payloads to catalog entries.
package drugs

import (
	"sort"
	"strings"
)

// Drug is one catalog entry.
type Drug struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	GenericName      string   `json:"genericName"`
	Category         string   `json:"category"`
	Strength         string   `json:"strength"`
	Form             string   `json:"form"`
	ActiveIngredient string   `json:"activeIngredient"`
	Description      string   `json:"description"`
	Dosage           string   `json:"dosage"`
	SideEffects      []string `json:"sideEffects"`
	Precautions      []string `json:"precautions"`
}

// Catalog is an in-memory, read-only drug catalog.
type Catalog struct {
	drugs []Drug
	byID  map[string]Drug
}

// NewCatalog builds a catalog over the given entries.
func NewCatalog(drugs []Drug) *Catalog {
	byID := make(map[string]Drug, len(drugs))
	for _, d := range drugs {
		byID[d.ID] = d
	}
	return &Catalog{drugs: drugs, byID: byID}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return NewCatalog(defaultDrugs)
}

// All returns every entry in catalog order.
func (c *Catalog) All() []Drug {
	return append([]Drug(nil), c.drugs...)
}

// ByID looks an entry up by its identifier.
func (c *Catalog) ByID(id string) (Drug, bool) {
	d, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return d, ok
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range c.drugs {
		if _, ok := seen[d.Category]; ok {
			continue
		}
		seen[d.Category] = struct{}{}
		out = append(out, d.Category)
	}
	sort.Strings(out)
	return out
}

// Search filters by a case-insensitive substring of the name or generic name
// and an optional category. An empty term matches everything.
func (c *Catalog) Search(term, category string) []Drug {
	term = strings.ToLower(strings.TrimSpace(term))

	var out []Drug
	for _, d := range c.drugs {
		if category != "" && !strings.EqualFold(d.Category, category) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(d.Name), term) &&
			!strings.Contains(strings.ToLower(d.GenericName), term) {
			continue
		}
		out = append(out, d)
	}
	return out
}

var defaultDrugs = []Drug{
	{
		ID: "metformin", Name: "Metformin", GenericName: "Metformin",
		Category: "Diabetes", Strength: "500 mg", Form: "Tablet", ActiveIngredient: "Metformin",
		Description: "Biguanide anti-hyperglycemic. First-line treatment for type 2 diabetes; also used in PCOS and metabolic syndrome. Lowers hepatic glucose production and increases insulin sensitivity.",
		Dosage:      "Starting low (e.g. 500-850 mg once or twice daily), with gradual titration; max often ~2000-2500 mg/day.",
		SideEffects: []string{"Diarrhea", "Nausea", "Abdominal pain", "Possible mild risk of hypoglycemia"},
		Precautions: []string{"Rare but dangerous lactic acidosis, especially in renal impairment", "Monitor renal function", "Extended-release may reduce GI upset"},
	},
	{
		ID: "amlodipine", Name: "Amlodipine (Norvasc)", GenericName: "Amlodipine",
		Category: "Cardiovascular", Strength: "5 mg", Form: "Tablet", ActiveIngredient: "Amlodipine",
		Description: "Dihydropyridine calcium channel blocker for hypertension and angina. Vasodilation via inhibition of L-type calcium channels.",
		Dosage:      "Usually 5-10 mg once daily.",
		SideEffects: []string{"Peripheral edema", "Fatigue", "Nausea"},
		Precautions: []string{"Caution in hepatic impairment", "Interaction with CYP3A4 inhibitors"},
	},
	{
		ID: "levothyroxine", Name: "Levothyroxine", GenericName: "Levothyroxine",
		Category: "Hormone", Strength: "100 mcg", Form: "Tablet", ActiveIngredient: "Levothyroxine",
		Description: "Thyroid hormone replacement for hypothyroidism and goiter suppression. Supplies synthetic thyroxine (T4), converted to active T3.",
		Dosage:      "Often ~1.6 ug/kg/day; titrate based on TSH.",
		SideEffects: []string{"Palpitations", "Tremors", "Weight changes", "Insomnia"},
		Precautions: []string{"Risk of arrhythmias", "Absorption reduced by calcium/iron (take on empty stomach)"},
	},
	{
		ID: "metoprolol", Name: "Metoprolol", GenericName: "Metoprolol",
		Category: "Cardiovascular", Strength: "N/A", Form: "Tablet", ActiveIngredient: "Metoprolol",
		Description: "Beta-1 selective beta blocker for hypertension, angina, heart failure, post-MI management.",
		Dosage:      "Varies; extended- or immediate-release depending on indication.",
		SideEffects: []string{"Dizziness", "Fatigue", "Sleep disturbances"},
		Precautions: []string{"Abrupt withdrawal can cause rebound symptoms; taper gradually"},
	},
	{
		ID: "ibuprofen", Name: "Ibuprofen", GenericName: "Ibuprofen",
		Category: "Pain Relief", Strength: "200 mg", Form: "Tablet", ActiveIngredient: "Ibuprofen",
		Description: "NSAID used for pain, fever, and inflammation. Nonselective COX inhibition reducing prostaglandins.",
		Dosage:      "OTC doses up to 1200 mg/day; follow label or doctor advice.",
		SideEffects: []string{"GI upset", "Dizziness", "Fluid retention"},
		Precautions: []string{"Risk of GI bleeding with long-term/high-dose use", "Avoid combining with other NSAIDs"},
	},
	{
		ID: "paracetamol", Name: "Paracetamol (Acetaminophen)", GenericName: "Paracetamol",
		Category: "Pain Relief", Strength: "500 mg", Form: "Tablet", ActiveIngredient: "Acetaminophen",
		Description: "Analgesic and antipyretic used for mild-to-moderate pain and fever.",
		Dosage:      "500-1000 mg every 4-6 hours, not to exceed 3000-3250 mg/day.",
		SideEffects: []string{"Rare at therapeutic doses", "Rash (rare)"},
		Precautions: []string{"Hepatotoxicity risk at high doses", "Avoid other acetaminophen-containing products"},
	},
	{
		ID: "aspirin", Name: "Aspirin (Low-Dose)", GenericName: "Aspirin",
		Category: "Cardiovascular", Strength: "81 mg", Form: "Tablet", ActiveIngredient: "Aspirin",
		Description: "NSAID and antiplatelet used for cardioprotection and mild pain/fever.",
		Dosage:      "75-100 mg daily for cardioprotection; higher doses for pain.",
		SideEffects: []string{"GI discomfort", "Bleeding risk"},
		Precautions: []string{"Avoid in children with viral illness (Reye's syndrome)", "Use caution with bleeding disorders"},
	},
	{
		ID: "losartan", Name: "Losartan", GenericName: "Losartan",
		Category: "Cardiovascular", Strength: "50 mg", Form: "Tablet", ActiveIngredient: "Losartan",
		Description: "ARB for hypertension and diabetic nephropathy. Blocks angiotensin II receptors causing vasodilation.",
		Dosage:      "25-100 mg once daily depending on indication.",
		SideEffects: []string{"Dizziness", "Increased potassium"},
		Precautions: []string{"Contraindicated in pregnancy", "Monitor potassium and kidney function"},
	},
	{
		ID: "simvastatin", Name: "Simvastatin", GenericName: "Simvastatin",
		Category: "Cholesterol", Strength: "20 mg", Form: "Tablet", ActiveIngredient: "Simvastatin",
		Description: "HMG-CoA reductase inhibitor (statin) used to reduce LDL cholesterol and cardiovascular risk.",
		Dosage:      "10-40 mg once daily (evening preferred).",
		SideEffects: []string{"Muscle pain", "GI upset"},
		Precautions: []string{"Risk of myopathy; avoid grapefruit juice and certain CYP3A4 inhibitors"},
	},
	{
		ID: "omeprazole", Name: "Omeprazole", GenericName: "Omeprazole",
		Category: "Gastrointestinal", Strength: "20 mg", Form: "Capsule", ActiveIngredient: "Omeprazole",
		Description: "Proton pump inhibitor for GERD and peptic ulcer disease. Inhibits gastric H+/K+ ATPase.",
		Dosage:      "20-40 mg once daily.",
		SideEffects: []string{"Headache", "Nausea"},
		Precautions: []string{"Long-term use may affect B12 and bone health"},
	},
	{
		ID: "furosemide", Name: "Furosemide", GenericName: "Furosemide",
		Category: "Diuretic", Strength: "40 mg", Form: "Tablet", ActiveIngredient: "Furosemide",
		Description: "Loop diuretic used for edema and some cases of hypertension.",
		Dosage:      "20-80 mg daily orally; IV dosing varies.",
		SideEffects: []string{"Frequent urination", "Dizziness", "Electrolyte imbalance"},
		Precautions: []string{"Monitor electrolytes and kidney function"},
	},
	{
		ID: "prednisone", Name: "Prednisone", GenericName: "Prednisone",
		Category: "Corticosteroid", Strength: "10 mg", Form: "Tablet", ActiveIngredient: "Prednisone",
		Description: "Systemic corticosteroid used for inflammatory and autoimmune conditions.",
		Dosage:      "Dose varies widely (5-60 mg) depending on condition.",
		SideEffects: []string{"Weight gain", "Mood changes", "Insomnia"},
		Precautions: []string{"Long-term use risks osteoporosis and adrenal suppression; taper slowly"},
	},
	{
		ID: "clopidogrel", Name: "Clopidogrel", GenericName: "Clopidogrel",
		Category: "Cardiovascular", Strength: "75 mg", Form: "Tablet", ActiveIngredient: "Clopidogrel",
		Description: "Antiplatelet (P2Y12 inhibitor) used to reduce risk of thrombotic events.",
		Dosage:      "75 mg once daily for most indications.",
		SideEffects: []string{"Bruising", "Bleeding", "Diarrhea"},
		Precautions: []string{"Increased bleeding risk; check interactions with PPIs"},
	},
	{
		ID: "hydrochlorothiazide", Name: "Hydrochlorothiazide (HCTZ)", GenericName: "Hydrochlorothiazide",
		Category: "Diuretic", Strength: "25 mg", Form: "Tablet", ActiveIngredient: "Hydrochlorothiazide",
		Description: "Thiazide diuretic used for hypertension and edema.",
		Dosage:      "12.5-50 mg daily.",
		SideEffects: []string{"Increased urination", "Low potassium", "Dizziness"},
		Precautions: []string{"Monitor electrolytes; may aggravate gout"},
	},
	{
		ID: "lisinopril", Name: "Lisinopril", GenericName: "Lisinopril",
		Category: "Cardiovascular", Strength: "10 mg", Form: "Tablet", ActiveIngredient: "Lisinopril",
		Description: "ACE inhibitor used for hypertension and heart failure.",
		Dosage:      "10-40 mg daily.",
		SideEffects: []string{"Cough", "Dizziness"},
		Precautions: []string{"Contraindicated in pregnancy; monitor potassium"},
	},
	{
		ID: "warfarin", Name: "Warfarin", GenericName: "Warfarin",
		Category: "Anticoagulant", Strength: "5 mg", Form: "Tablet", ActiveIngredient: "Warfarin",
		Description: "Vitamin K antagonist anticoagulant used to prevent and treat thromboembolism.",
		Dosage:      "Individualized to INR goals (commonly 2.0-3.0).",
		SideEffects: []string{"Bleeding", "Bruising"},
		Precautions: []string{"Many food/drug interactions; monitor INR regularly"},
	},
	{
		ID: "albuterol", Name: "Albuterol (Salbutamol)", GenericName: "Albuterol",
		Category: "Respiratory", Strength: "90 mcg/puff", Form: "Inhaler", ActiveIngredient: "Albuterol",
		Description: "Short-acting beta-2 agonist used for relief of bronchospasm (asthma, COPD).",
		Dosage:      "1-2 puffs every 4-6 hours PRN (metered-dose inhaler).",
		SideEffects: []string{"Tremor", "Palpitations", "Nervousness"},
		Precautions: []string{"Monitor for paradoxical bronchospasm; avoid overuse"},
	},
	{
		ID: "montelukast", Name: "Montelukast", GenericName: "Montelukast",
		Category: "Respiratory", Strength: "10 mg", Form: "Tablet", ActiveIngredient: "Montelukast",
		Description: "Leukotriene receptor antagonist used for asthma maintenance and allergic rhinitis.",
		Dosage:      "10 mg once daily for adults.",
		SideEffects: []string{"Headache", "Abdominal pain"},
		Precautions: []string{"Possible neuropsychiatric effects; not for acute attacks"},
	},
	{
		ID: "doxycycline", Name: "Doxycycline", GenericName: "Doxycycline",
		Category: "Antibiotic", Strength: "100 mg", Form: "Capsule", ActiveIngredient: "Doxycycline",
		Description: "Tetracycline antibiotic used for various bacterial infections and acne.",
		Dosage:      "100 mg once or twice daily depending on indication.",
		SideEffects: []string{"Nausea", "Sun sensitivity"},
		Precautions: []string{"Not for pregnant women or children under 8; avoid dairy near dosing"},
	},
	{
		ID: "ciprofloxacin", Name: "Ciprofloxacin", GenericName: "Ciprofloxacin",
		Category: "Antibiotic", Strength: "500 mg", Form: "Tablet", ActiveIngredient: "Ciprofloxacin",
		Description: "Fluoroquinolone antibiotic used for UTIs and some respiratory and GI infections.",
		Dosage:      "250-750 mg twice daily depending on infection.",
		SideEffects: []string{"Nausea", "Dizziness", "Tendon rupture (rare)"},
		Precautions: []string{"Avoid in severe myasthenia gravis; monitor for tendon problems"},
	},
	{
		ID: "fluoxetine", Name: "Fluoxetine", GenericName: "Fluoxetine",
		Category: "Antidepressant", Strength: "20 mg", Form: "Capsule", ActiveIngredient: "Fluoxetine",
		Description: "SSRI antidepressant used for depression, OCD, and other disorders.",
		Dosage:      "20-60 mg daily.",
		SideEffects: []string{"Nausea", "Insomnia", "Sexual dysfunction"},
		Precautions: []string{"Increased suicide risk in young people; avoid MAOIs"},
	},
	{
		ID: "sertraline", Name: "Sertraline", GenericName: "Sertraline",
		Category: "Antidepressant", Strength: "50 mg", Form: "Tablet", ActiveIngredient: "Sertraline",
		Description: "SSRI antidepressant used for depression, anxiety, PTSD, and OCD.",
		Dosage:      "50-200 mg daily.",
		SideEffects: []string{"Diarrhea", "Insomnia"},
		Precautions: []string{"Monitor for serotonin syndrome; taper to discontinue"},
	},
}
