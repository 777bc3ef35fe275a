package pipeline

import "github.com/sells-group/startup-analyst/internal/model"

func fptr(v float64) *float64 { return &v }

// richRecord returns a record with every analysis-relevant field set
// to healthy values.
func richRecord() model.CompanyRecord {
	return model.CompanyRecord{
		Name:           "Acme Robotics",
		Sector:         "Industrial Automation",
		Stage:          "Series A",
		Location:       "Austin, TX",
		Founded:        "2021",
		Website:        "https://acme-robotics.example",
		Description:    "Robotic arms for small-batch manufacturing",
		TargetMarket:   "Mid-size contract manufacturers",
		Product:        "Robotic arm platform",
		Founders:       []string{"Dana Wu", "Felix Obi"},
		KeyTeam:        []string{"VP Eng"},
		Advantages:     []string{"Proprietary gripper design", "14-day deployment"},
		TotalFunding:   fptr(8_000_000),
		MonthlyRevenue: fptr(150_000),
		AnnualRevenue:  fptr(1_800_000),
		BurnRate:       fptr(100_000),
		CashBalance:    fptr(4_200_000),
		GrossMargin:    fptr(62),
		CAC:            fptr(9_000),
		LTV:            fptr(54_000),
		RetentionRate:  fptr(91),
		GrowthRate:     fptr(14),
		CustomerCount:  fptr(42),
	}
}
