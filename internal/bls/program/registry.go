package program

import "fmt"

// registry is populated once at package init and never mutated after.
// Reads are safe from any goroutine.
var registry = buildRegistry()

func buildRegistry() map[string]Program {
	programs := []Program{
		{
			Code: "CE",
			Name: "Current Employment Statistics (National)",
			Description: "Monthly estimates of employment, hours, and earnings " +
				"from the payroll survey (NAICS basis).",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (CE)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "supersector", Start: 4, End: 5, Description: "Supersector code"},
				{Name: "industry", Start: 6, End: 11, Description: "Industry code"},
				{Name: "data_type", Start: 12, End: 13, Description: "Data type code"},
			},
			MappingFiles: []string{"datatype", "industry", "seasonal", "series", "supersector"},
		},
		{
			Code: "CU",
			Name: "Consumer Price Index - All Urban Consumers",
			Description: "Monthly data on changes in the prices paid by urban " +
				"consumers for a representative basket of goods and services.",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (CU)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "periodicity", Start: 4, End: 4, Description: "Periodicity code"},
				{Name: "area", Start: 5, End: 8, Description: "Area code"},
				{Name: "item", Start: 9, End: 16, Description: "Item code"},
			},
			MappingFiles: []string{"area", "base", "item", "periodicity", "seasonal", "series"},
		},
		{
			Code:        "CW",
			Name:        "Consumer Price Index - Urban Wage Earners and Clerical Workers",
			Description: "Monthly CPI data for urban wage earners and clerical workers.",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (CW)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "periodicity", Start: 4, End: 4, Description: "Periodicity code"},
				{Name: "area", Start: 5, End: 8, Description: "Area code"},
				{Name: "item", Start: 9, End: 16, Description: "Item code"},
			},
			MappingFiles: []string{"area", "base", "item", "periodicity", "seasonal", "series"},
		},
		{
			Code: "LN",
			Name: "Labor Force Statistics",
			Description: "Monthly labor force, employment, and unemployment " +
				"estimates from the Current Population Survey (CPS).",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (LN)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "series_code", Start: 4, End: 11, Description: "Series classification code"},
			},
			MappingFiles: []string{
				"ages", "born", "class", "duration", "education", "ethnic", "indy",
				"lfst", "occupation", "origins", "pcts", "race", "seasonal", "series", "sexs",
			},
		},
		{
			Code: "LA",
			Name: "Local Area Unemployment Statistics",
			Description: "Monthly and annual labor force, employment, unemployment, " +
				"and unemployment rate for states, MSAs, counties, and cities.",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (LA)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "area_type", Start: 4, End: 4, Description: "Area type code"},
				{Name: "state_fips", Start: 5, End: 6, Description: "State FIPS code"},
				{Name: "area", Start: 7, End: 11, Description: "Area code"},
				{Name: "measure", Start: 12, End: 13, Description: "Measure code"},
			},
			MappingFiles: []string{"area", "area_type", "measure", "seasonal", "series", "state_region_division"},
		},
		{
			Code: "SM",
			Name: "State and Area Employment, Hours, and Earnings",
			Description: "Monthly estimates of employment, hours, and earnings " +
				"for states and metropolitan areas (NAICS basis).",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (SM)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "state", Start: 4, End: 5, Description: "State code"},
				{Name: "area", Start: 6, End: 10, Description: "Area code"},
				{Name: "supersector_industry", Start: 11, End: 18, Description: "Supersector/industry code"},
				{Name: "data_type", Start: 19, End: 20, Description: "Data type code"},
			},
			MappingFiles: []string{"area", "datatype", "industry", "seasonal", "series", "state", "supersector"},
		},
		{
			Code: "JT",
			Name: "Job Openings and Labor Turnover Survey",
			Description: "Monthly data on job openings, hires, and separations " +
				"by industry and region.",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (JT)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "industry", Start: 4, End: 9, Description: "Industry code"},
				{Name: "state", Start: 10, End: 11, Description: "State code"},
				{Name: "area", Start: 12, End: 16, Description: "Area code"},
				{Name: "sizeclass", Start: 17, End: 18, Description: "Size class code"},
				{Name: "dataelement", Start: 19, End: 20, Description: "Data element code"},
				{Name: "ratelevel", Start: 21, End: 21, Description: "Rate or level code"},
			},
			MappingFiles: []string{"area", "dataelement", "industry", "ratelevel", "seasonal", "series", "sizeclass", "state"},
		},
		{
			Code: "AP",
			Name: "Average Price Data",
			Description: "Monthly average retail prices for selected food, " +
				"energy, and other items.",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (AP)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "area", Start: 4, End: 7, Description: "Area code"},
				{Name: "item", Start: 8, End: 13, Description: "Item code"},
			},
			MappingFiles: []string{"area", "item", "seasonal", "series"},
		},
		{
			Code: "WP",
			Name: "Producer Price Index - Commodities",
			Description: "Monthly producer price changes for commodities, " +
				"organized by SIC and commodity groupings.",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (WP)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "group", Start: 4, End: 5, Description: "Group code"},
				{Name: "item", Start: 6, End: 14, Description: "Item code"},
			},
			MappingFiles: []string{"group", "item", "seasonal", "series"},
		},
		{
			Code:        "PC",
			Name:        "Producer Price Index - Industry Data",
			Description: "Monthly producer price index data by NAICS industry.",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (PC)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "industry", Start: 4, End: 9, Description: "Industry code"},
				{Name: "product", Start: 10, End: 21, Description: "Product code"},
			},
			MappingFiles: []string{"industry", "product", "seasonal", "series"},
		},
		{
			Code: "CI",
			Name: "Employment Cost Index",
			Description: "Quarterly changes in employer costs for employee " +
				"compensation (wages, salaries, and benefits).",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (CI)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "ownership", Start: 4, End: 4, Description: "Ownership code"},
				{Name: "compensation", Start: 5, End: 6, Description: "Compensation component code"},
				{Name: "industry", Start: 7, End: 10, Description: "Industry code"},
				{Name: "occupation", Start: 11, End: 13, Description: "Occupation code"},
				{Name: "subcell", Start: 14, End: 16, Description: "Subcell code"},
				{Name: "periodicity", Start: 17, End: 17, Description: "Periodicity code"},
			},
			MappingFiles: []string{"compensation", "industry", "occupation", "ownership", "periodicity", "seasonal", "series", "subcell"},
		},
		{
			Code: "BD",
			Name: "Business Employment Dynamics",
			Description: "Quarterly data on gross job gains and losses, " +
				"establishment births and deaths.",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (BD)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "state_fips", Start: 4, End: 5, Description: "State FIPS code"},
				{Name: "msa", Start: 6, End: 10, Description: "MSA code"},
				{Name: "industry", Start: 11, End: 16, Description: "Industry code"},
				{Name: "data_element", Start: 17, End: 18, Description: "Data element code"},
				{Name: "sizeclass", Start: 19, End: 19, Description: "Size class code"},
				{Name: "data_class", Start: 20, End: 20, Description: "Data class code"},
				{Name: "ratelevel", Start: 21, End: 21, Description: "Rate or level code"},
				{Name: "periodicity", Start: 22, End: 22, Description: "Periodicity code"},
			},
			MappingFiles: []string{"dataelement", "industry", "msa", "ratelevel", "seasonal", "series", "sizeclass", "state"},
		},
		{
			Code: "EN",
			Name: "Quarterly Census of Employment and Wages",
			Description: "Quarterly employment and wages data covering nearly all " +
				"employers, derived from unemployment insurance records.",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (EN)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "area", Start: 4, End: 8, Description: "Area code"},
				{Name: "data_type", Start: 9, End: 9, Description: "Data type code"},
				{Name: "size", Start: 10, End: 10, Description: "Size code"},
				{Name: "ownership", Start: 11, End: 11, Description: "Ownership code"},
				{Name: "industry", Start: 12, End: 17, Description: "Industry code"},
			},
			MappingFiles: []string{"area", "datatype", "industry", "ownership", "seasonal", "series", "size"},
		},
		{
			Code: "IP",
			Name: "Industry Productivity",
			Description: "Annual and quarterly output, hours, and productivity " +
				"measures for major U.S. industries.",
			Fields: []Field{
				{Name: "prefix", Start: 1, End: 2, Description: "Survey prefix (IP)"},
				{Name: "seasonal", Start: 3, End: 3, Description: "Seasonal adjustment code"},
				{Name: "sector", Start: 4, End: 5, Description: "Sector code"},
				{Name: "industry", Start: 6, End: 11, Description: "Industry code"},
				{Name: "measure", Start: 12, End: 13, Description: "Measure code"},
				{Name: "duration", Start: 14, End: 14, Description: "Duration code"},
			},
			MappingFiles: []string{"duration", "industry", "measure", "seasonal", "sector", "series"},
		},
	}

	m := make(map[string]Program, len(programs))
	for _, p := range programs {
		if err := validate(p); err != nil {
			panic(err)
		}
		m[p.Code] = p
	}
	return m
}

// validate checks a program's field layout at registry build time:
// positions must be 1-indexed, non-inverted, and non-overlapping.
func validate(p Program) error {
	claimed := make(map[int]string)
	for _, f := range p.Fields {
		if f.Start < 1 {
			return fmt.Errorf("program %s: field %s: start %d < 1", p.Code, f.Name, f.Start)
		}
		if f.End < f.Start {
			return fmt.Errorf("program %s: field %s: end %d < start %d", p.Code, f.Name, f.End, f.Start)
		}
		for pos := f.Start; pos <= f.End; pos++ {
			if other, ok := claimed[pos]; ok {
				return fmt.Errorf("program %s: fields %s and %s overlap at position %d",
					p.Code, other, f.Name, pos)
			}
			claimed[pos] = f.Name
		}
	}
	return nil
}
