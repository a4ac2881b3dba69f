package dataset

import (
	"fmt"
	"math"

	"DataScope/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// hooks derive extra columns for well-known datasets right after loading.
type hook func(dataframe.DataFrame) (dataframe.DataFrame, error)

var hooks = map[string]hook{
	"diamonds": addDiamondFeatures,
	"student":  addStudentFeatures,
}

// addDiamondFeatures derives price_per_carat (2 decimals, 0 where carat is 0)
// and the high_price flag for prices above 3500.
func addDiamondFeatures(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for _, col := range []string{"price", "carat"} {
		if !utils.HasColumn(df, col) {
			return df, fmt.Errorf("missing column %s", col)
		}
	}
	prices := df.Col("price").Float()
	carats := df.Col("carat").Float()

	perCarat := make([]float64, df.Nrow())
	high := make([]int, df.Nrow())
	for i := range perCarat {
		switch {
		case math.IsNaN(prices[i]) || math.IsNaN(carats[i]):
			perCarat[i] = math.NaN()
		case carats[i] == 0:
			perCarat[i] = 0
		default:
			perCarat[i] = utils.Round(prices[i]/carats[i], 2)
		}
		if !math.IsNaN(prices[i]) && prices[i] > 3500 {
			high[i] = 1
		}
	}

	df = df.Mutate(series.New(perCarat, series.Float, "price_per_carat"))
	df = df.Mutate(series.New(high, series.Int, "high_price"))
	if df.Err != nil {
		return df, df.Err
	}
	return df, nil
}

// addStudentFeatures derives average_grade from the three period grades.
func addStudentFeatures(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for _, col := range []string{"G1", "G2", "G3"} {
		if !utils.HasColumn(df, col) {
			return df, fmt.Errorf("missing column %s", col)
		}
	}
	g1 := df.Col("G1").Float()
	g2 := df.Col("G2").Float()
	g3 := df.Col("G3").Float()

	avg := make([]float64, df.Nrow())
	for i := range avg {
		avg[i] = utils.Round((g1[i]+g2[i]+g3[i])/3, 2)
	}

	df = df.Mutate(series.New(avg, series.Float, "average_grade"))
	if df.Err != nil {
		return df, df.Err
	}
	return df, nil
}
