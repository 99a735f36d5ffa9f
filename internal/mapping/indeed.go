package mapping

// IndeedStandardName is the name of the built-in 33-column profile.
const IndeedStandardName = "Indeed_Standard"

// IndeedStandard returns the built-in 33-column report profile.
//
// Columns A–I come from the XTM project export, J–L from the TOS order
// export and M–T from the edit distance export; Q is the word total over
// M–P. U–AG are client placeholders left blank.
func IndeedStandard() *Config {
	direct := func(src SourceID, col string) ColumnSpec { return DirectRef{Source: src, Column: col} }

	outputs := []OutputColumn{
		{"A_Status", Constant{Value: "Translated"}},
		{"B_Project_ID", direct(XTM, "Project ID")},
		{"C_Project_Name", direct(XTM, "Project name")},
		{"D_Creation_Date", direct(XTM, "Creation date")},
		{"E_Due_Date", direct(XTM, "Due date")},
		{"F_Department", direct(XTM, "Department_Indeed")},
		{"G_Team", direct(XTM, "Team_Indeed")},
		{"H_Source_Language", direct(XTM, "Source language")},
		{"I_Target_Language", direct(XTM, "Target language")},

		{"J_Service_Type", direct(TOS, "service_type")},
		{"K_Requested_By", direct(TOS, "requested_by")},
		{"L_Tags", direct(TOS, "tags")},

		{"M_No_Match", direct(EDIT, "No match (after MTPE discount)")},
		{"N_50_74_Match", direct(EDIT, "50%-74%")},
		{"O_75_84_Match", direct(EDIT, "75%-84%")},
		{"P_85_94_Match", direct(EDIT, "85%-94%")},
		{"Q_Total_Words", DerivedSum{Columns: []string{"M_No_Match", "N_50_74_Match", "O_75_84_Match", "P_85_94_Match"}}},
		{"R_95_99_Match", direct(EDIT, "95%-99%")},
		{"S_100_Match", direct(EDIT, "100%")},
		{"T_Repetitions", direct(EDIT, "Repetitions")},
	}
	for _, name := range []string{
		"U_Field", "V_Field", "W_Field", "X_Field", "Y_Field", "Z_Field",
		"AA_Field", "AB_Field", "AC_Field", "AD_Field", "AE_Field", "AF_Field", "AG_Field",
	} {
		outputs = append(outputs, OutputColumn{name, Constant{Value: ""}})
	}

	return MustNew(Definition{
		Name:    IndeedStandardName,
		Primary: XTM,
		Outputs: outputs,
		Joins: []JoinSpec{
			{PrimaryKey: "Project ID", Secondary: TOS, SecondaryKey: "order_id"},
			{PrimaryKey: "Project ID", Secondary: EDIT, SecondaryKey: "Project ID"},
		},
		Required: map[SourceID][]string{
			XTM:  {"Project ID", "Project name", "Source language", "Target language"},
			TOS:  {"order_id", "service_type", "requested_by"},
			EDIT: {"Project ID", "No match (after MTPE discount)"},
		},
	})
}
