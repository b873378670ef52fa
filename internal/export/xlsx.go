package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"mimic-sofa/internal/models"
)

// ScoreExportHeader is the column order of the xlsx export, matching the
// sofa_hourly table.
var ScoreExportHeader = []string{
	"ICU Stay", "Hour", "Start", "End",
	"MeanBP Min", "GCS Min", "Urine Output",
	"Bilirubin Max", "Creatinine Max", "Platelet Min",
	"PF Vent Min", "PF NoVent Min",
	"Epinephrine", "Norepinephrine", "Dopamine", "Dobutamine",
	"Urine 24h",
	"Respiration", "Coagulation", "Liver", "Cardiovascular", "CNS", "Renal",
	"Respiration 24h", "Coagulation 24h", "Liver 24h",
	"Cardiovascular 24h", "CNS 24h", "Renal 24h",
	"SOFA 24h",
}

const timeLayout = "2006-01-02 15:04:05"

// GenerateScoreWorkbook builds an xlsx workbook of the hourly score rows
// for clinician review.
func GenerateScoreWorkbook(rows []models.HourlyScore) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "SOFA Hourly"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range ScoreExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, row := range rows {
		values := []any{
			row.StayID,
			row.Hr,
			row.Start.Format(timeLayout),
			row.End.Format(timeLayout),
			floatCell(row.Aggregates.MeanBPMin),
			floatCell(row.Aggregates.GCSMin),
			floatCell(row.Aggregates.UrineOutput),
			floatCell(row.Aggregates.BilirubinMax),
			floatCell(row.Aggregates.CreatinineMax),
			floatCell(row.Aggregates.PlateletMin),
			floatCell(row.Aggregates.PaO2FiO2VentMin),
			floatCell(row.Aggregates.PaO2FiO2NoVentMin),
			floatCell(row.Aggregates.RateEpinephrine),
			floatCell(row.Aggregates.RateNorepinephrine),
			floatCell(row.Aggregates.RateDopamine),
			floatCell(row.Aggregates.RateDobutamine),
			floatCell(row.UrineSum24),
			intCell(row.Raw.Respiration),
			intCell(row.Raw.Coagulation),
			intCell(row.Raw.Liver),
			intCell(row.Raw.Cardiovascular),
			intCell(row.Raw.CNS),
			intCell(row.Raw.Renal),
			row.Windowed.Respiration,
			row.Windowed.Coagulation,
			row.Windowed.Liver,
			row.Windowed.Cardiovascular,
			row.Windowed.CNS,
			row.Windowed.Renal,
			row.Windowed.Total,
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// Empty cells stay empty: a missing aggregate must be distinguishable
// from zero in the export too.

func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func intCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
