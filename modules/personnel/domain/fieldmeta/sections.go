package fieldmeta

// Section is a fixed block of the personnel detail view.
type Section struct {
	Key    string
	Title  string
	Fields []string
}

var DetailSections = []Section{
	{
		Key:   "workInfo",
		Title: "工作信息",
		Fields: []string{
			"employee_code", "employee_status", "employee_type", "career_sequence",
			"reporting_manager", "business_unit", "business_unit_leader", "department",
			"position", "tag", "join_company_date", "internship_period_months",
			"internship_to_regular_date", "onboarding_date", "probation_period_months",
			"regularization_date",
		},
	},
	{
		Key:   "personalInfo",
		Title: "个人信息",
		Fields: []string{
			"gender", "birth_date", "age", "height_cm", "weight_kg", "blood_type",
			"medical_history", "nationality", "ethnicity", "ancestral_home_province_city",
			"political_status", "first_work_date", "seniority_calculation_date",
			"work_years", "household_registration_type", "household_province",
			"household_city", "household_address", "id_address", "contact_phone",
			"qq", "wechat", "personal_email", "current_residence_address",
		},
	},
	{
		Key:    "documentInfo",
		Title:  "证件信息",
		Fields: []string{"primary_id_type", "id_number", "id_valid_until", "id_days_remaining"},
	},
	{
		Key:   "bankInfo",
		Title: "银行卡信息",
		Fields: []string{
			"bank_account_number", "bank_name", "social_security_number",
			"provident_fund_account",
		},
	},
	{
		Key:   "contractInfo",
		Title: "合同信息",
		Fields: []string{
			"contract_type", "contract_signed_times", "latest_contract_start",
			"latest_contract_end", "contract_remaining_days",
		},
	},
	{
		Key:   "educationInfo",
		Title: "教育经历",
		Fields: []string{
			"education_degree", "enrollment_date", "major", "study_form",
			"schooling_years", "degree_awarding_country", "degree_awarding_institution",
			"degree_awarding_date", "graduation_school", "graduation_date",
			"foreign_language_level",
		},
	},
	{
		Key:   "familyInfo",
		Title: "家庭与婚姻",
		Fields: []string{
			"marital_status", "marriage_leave_status", "marriage_leave_date",
			"spouse_name", "spouse_phone", "spouse_employer", "spouse_position",
			"emergency_contact_name", "emergency_contact_relation",
			"emergency_contact_phone", "emergency_contact_address",
		},
	},
	{
		Key:   "workHistory",
		Title: "工作履历",
		Fields: []string{
			"rehire_count", "previous_join_date", "previous_leave_date",
			"previous_employer", "non_compete_agreement",
		},
	},
	{
		Key:   "resignationInfo",
		Title: "离职信息",
		Fields: []string{
			"resignation_date", "resignation_type", "resignation_reason_category",
			"resignation_reason_detail", "remarks",
		},
	},
}
