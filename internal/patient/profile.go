package patient

// Measurement is a value with its unit, e.g. height in cm or weight in kg.
type Measurement struct {
	Value *float64 `json:"value,omitempty"`
	Unit  string   `json:"unit,omitempty"`
}

// Caregiver describes the person allowed to help manage a patient's records.
type Caregiver struct {
	FullName     *string `json:"fullName,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
	Email        *string `json:"email,omitempty"`
	PhoneNumber  *string `json:"phoneNumber,omitempty"`
}

// Profile holds the multi-step medical questionnaire. Common fields are
// typed; the long tail of optional questionnaire answers lives in Extra and
// is persisted verbatim. Pointer fields distinguish "not answered yet" from
// an explicit false/empty answer, which partial updates depend on.
type Profile struct {
	ProfilePicture        *string      `json:"profilePicture,omitempty"`
	DateOfBirth           *string      `json:"dateOfBirth,omitempty"`
	Gender                *string      `json:"gender,omitempty"`
	Height                *Measurement `json:"height,omitempty"`
	Weight                *Measurement `json:"weight,omitempty"`
	Country               *string      `json:"country,omitempty"`
	City                  *string      `json:"city,omitempty"`
	ZipCode               *string      `json:"zipCode,omitempty"`
	HasPrivateInsurance   *bool        `json:"hasPrivateInsurance,omitempty"`
	InsuranceProviderName *string      `json:"insuranceProviderName,omitempty"`

	HasCancerDiagnosis *bool   `json:"hasCancerDiagnosis,omitempty"`
	CancerType         *string `json:"cancerType,omitempty"`
	CancerSubtype      *string `json:"cancerSubtype,omitempty"`
	CancerStage        *string `json:"cancerStage,omitempty"`

	UserRole                    *string    `json:"userRole,omitempty"`
	Caregiver                   *Caregiver `json:"caregiver,omitempty"`
	AllowCaregiverManageRecords *bool      `json:"allowCaregiverManageRecords,omitempty"`

	OnActiveTreatment *bool   `json:"onActiveTreatment,omitempty"`
	TreatingHospital  *string `json:"treatingHospital,omitempty"`
	OncologistName    *string `json:"oncologistName,omitempty"`

	ConsentToStoreMedicalData   *bool `json:"consentToStoreMedicalData,omitempty"`
	UnderstandsRevocationRights *bool `json:"understandsRevocationRights,omitempty"`
	AgreesToPrivacyPolicy       *bool `json:"agreesToPrivacyPolicy,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Apply merges the answered fields of update into the profile, leaving
// unanswered fields untouched.
func (p *Profile) Apply(update Profile) {
	if update.ProfilePicture != nil {
		p.ProfilePicture = update.ProfilePicture
	}
	if update.DateOfBirth != nil {
		p.DateOfBirth = update.DateOfBirth
	}
	if update.Gender != nil {
		p.Gender = update.Gender
	}
	if update.Height != nil {
		p.Height = update.Height
	}
	if update.Weight != nil {
		p.Weight = update.Weight
	}
	if update.Country != nil {
		p.Country = update.Country
	}
	if update.City != nil {
		p.City = update.City
	}
	if update.ZipCode != nil {
		p.ZipCode = update.ZipCode
	}
	if update.HasPrivateInsurance != nil {
		p.HasPrivateInsurance = update.HasPrivateInsurance
	}
	if update.InsuranceProviderName != nil {
		p.InsuranceProviderName = update.InsuranceProviderName
	}
	if update.HasCancerDiagnosis != nil {
		p.HasCancerDiagnosis = update.HasCancerDiagnosis
	}
	if update.CancerType != nil {
		p.CancerType = update.CancerType
	}
	if update.CancerSubtype != nil {
		p.CancerSubtype = update.CancerSubtype
	}
	if update.CancerStage != nil {
		p.CancerStage = update.CancerStage
	}
	if update.UserRole != nil {
		p.UserRole = update.UserRole
	}
	if update.Caregiver != nil {
		merged := Caregiver{}
		if p.Caregiver != nil {
			merged = *p.Caregiver
		}
		if update.Caregiver.FullName != nil {
			merged.FullName = update.Caregiver.FullName
		}
		if update.Caregiver.Relationship != nil {
			merged.Relationship = update.Caregiver.Relationship
		}
		if update.Caregiver.Email != nil {
			merged.Email = update.Caregiver.Email
		}
		if update.Caregiver.PhoneNumber != nil {
			merged.PhoneNumber = update.Caregiver.PhoneNumber
		}
		p.Caregiver = &merged
	}
	if update.AllowCaregiverManageRecords != nil {
		p.AllowCaregiverManageRecords = update.AllowCaregiverManageRecords
	}
	if update.OnActiveTreatment != nil {
		p.OnActiveTreatment = update.OnActiveTreatment
	}
	if update.TreatingHospital != nil {
		p.TreatingHospital = update.TreatingHospital
	}
	if update.OncologistName != nil {
		p.OncologistName = update.OncologistName
	}
	if update.ConsentToStoreMedicalData != nil {
		p.ConsentToStoreMedicalData = update.ConsentToStoreMedicalData
	}
	if update.UnderstandsRevocationRights != nil {
		p.UnderstandsRevocationRights = update.UnderstandsRevocationRights
	}
	if update.AgreesToPrivacyPolicy != nil {
		p.AgreesToPrivacyPolicy = update.AgreesToPrivacyPolicy
	}
	if len(update.Extra) > 0 {
		if p.Extra == nil {
			p.Extra = make(map[string]any, len(update.Extra))
		}
		for k, v := range update.Extra {
			p.Extra[k] = v
		}
	}
}

// MissingMandatory lists the questionnaire fields still unanswered. The
// profile counts as completed once this list is empty.
func (p Profile) MissingMandatory() []string {
	var missing []string
	checks := []struct {
		name   string
		answer bool
	}{
		{"dateOfBirth", p.DateOfBirth != nil},
		{"gender", p.Gender != nil},
		{"country", p.Country != nil},
		{"city", p.City != nil},
		{"zipCode", p.ZipCode != nil},
		{"hasPrivateInsurance", p.HasPrivateInsurance != nil},
		{"hasCancerDiagnosis", p.HasCancerDiagnosis != nil},
		{"userRole", p.UserRole != nil},
		{"consentToStoreMedicalData", p.ConsentToStoreMedicalData != nil},
		{"understandsRevocationRights", p.UnderstandsRevocationRights != nil},
		{"agreesToPrivacyPolicy", p.AgreesToPrivacyPolicy != nil},
	}
	for _, c := range checks {
		if !c.answer {
			missing = append(missing, c.name)
		}
	}
	return missing
}
