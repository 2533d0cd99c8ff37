package gormstore

import (
	"time"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

type pageRow struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	URL          string    `gorm:"uniqueIndex;not null;size:512"`
	Content      string    `gorm:"not null"`
	DateDownload time.Time `gorm:"not null"`
}

func (pageRow) TableName() string { return "pages" }

func (r pageRow) model() models.Page {
	return models.Page{ID: r.ID, URL: r.URL, Content: r.Content, DateDownload: r.DateDownload.UTC()}
}

type sensorRow struct {
	InternalID string    `gorm:"primaryKey;size:36"`
	SensorID   string    `gorm:"uniqueIndex;not null;size:16"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (sensorRow) TableName() string { return "sensors" }

func (r sensorRow) model() models.Sensor {
	return models.Sensor{InternalID: r.InternalID, SensorID: r.SensorID, CreatedAt: r.CreatedAt.UTC()}
}

// MeasurementRow is the measurements table. It is exported so gorm can
// flatten it into measurementView; (sensor, date) stays unique through
// idx_sensor_date.
type MeasurementRow struct {
	ID                            int64     `gorm:"primaryKey;autoIncrement"`
	SensorInternalID              *string   `gorm:"uniqueIndex:idx_sensor_date;size:36"`
	Date                          time.Time `gorm:"uniqueIndex:idx_sensor_date;index;not null;type:date"`
	PartikelPM10Mittel            *float64  `gorm:"column:partikel_pm10_mittel"`
	PartikelPM10Ueberschreitungen *float64  `gorm:"column:partikel_pm10_ueberschreitungen"`
	RussMittel                    *float64  `gorm:"column:russ_mittel"`
	RussMax3h                     *float64  `gorm:"column:russ_max3h"`
	StickstoffdioxidMittel        *float64  `gorm:"column:stickstoffdioxid_mittel"`
	StickstoffdioxidMax1h         *float64  `gorm:"column:stickstoffdioxid_max1h"`
	BenzolMittel                  *float64  `gorm:"column:benzol_mittel"`
	BenzolMax1h                   *float64  `gorm:"column:benzol_max1h"`
	KohlenmonoxidMittel           *float64  `gorm:"column:kohlenmonoxid_mittel"`
	KohlenmonoxidMax8hMittel      *float64  `gorm:"column:kohlenmonoxid_max8h_mittel"`
	OzonMax1h                     *float64  `gorm:"column:ozon_max1h"`
	OzonMax8hMittel               *float64  `gorm:"column:ozon_max8h_mittel"`
	SchwefeldioxidMittel          *float64  `gorm:"column:schwefeldioxid_mittel"`
	SchwefeldioxidMax1h           *float64  `gorm:"column:schwefeldioxid_max1h"`
	CreatedAt                     time.Time `gorm:"autoCreateTime"`
}

func (MeasurementRow) TableName() string { return "measurements" }

func newMeasurementRow(m models.Measurement) MeasurementRow {
	internalID := m.SensorInternalID
	v := m.Values
	return MeasurementRow{
		SensorInternalID:              &internalID,
		Date:                          m.Date.UTC(),
		PartikelPM10Mittel:            v.PartikelPM10Mittel,
		PartikelPM10Ueberschreitungen: v.PartikelPM10Ueberschreitungen,
		RussMittel:                    v.RussMittel,
		RussMax3h:                     v.RussMax3h,
		StickstoffdioxidMittel:        v.StickstoffdioxidMittel,
		StickstoffdioxidMax1h:         v.StickstoffdioxidMax1h,
		BenzolMittel:                  v.BenzolMittel,
		BenzolMax1h:                   v.BenzolMax1h,
		KohlenmonoxidMittel:           v.KohlenmonoxidMittel,
		KohlenmonoxidMax8hMittel:      v.KohlenmonoxidMax8hMittel,
		OzonMax1h:                     v.OzonMax1h,
		OzonMax8hMittel:               v.OzonMax8hMittel,
		SchwefeldioxidMittel:          v.SchwefeldioxidMittel,
		SchwefeldioxidMax1h:           v.SchwefeldioxidMax1h,
	}
}

// measurementView is a measurement joined with its sensor code.
type measurementView struct {
	MeasurementRow
	SensorCode *string
}

func (r measurementView) model() models.Measurement {
	m := models.Measurement{
		ID:        r.ID,
		Date:      r.Date.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
		Values: models.Values{
			PartikelPM10Mittel:            r.PartikelPM10Mittel,
			PartikelPM10Ueberschreitungen: r.PartikelPM10Ueberschreitungen,
			RussMittel:                    r.RussMittel,
			RussMax3h:                     r.RussMax3h,
			StickstoffdioxidMittel:        r.StickstoffdioxidMittel,
			StickstoffdioxidMax1h:         r.StickstoffdioxidMax1h,
			BenzolMittel:                  r.BenzolMittel,
			BenzolMax1h:                   r.BenzolMax1h,
			KohlenmonoxidMittel:           r.KohlenmonoxidMittel,
			KohlenmonoxidMax8hMittel:      r.KohlenmonoxidMax8hMittel,
			OzonMax1h:                     r.OzonMax1h,
			OzonMax8hMittel:               r.OzonMax8hMittel,
			SchwefeldioxidMittel:          r.SchwefeldioxidMittel,
			SchwefeldioxidMax1h:           r.SchwefeldioxidMax1h,
		},
	}
	if r.SensorInternalID != nil {
		m.SensorInternalID = *r.SensorInternalID
	}
	if r.SensorCode != nil {
		m.SensorCode = *r.SensorCode
	}
	return m
}

func allModels() []interface{} {
	return []interface{}{
		&pageRow{},
		&sensorRow{},
		&MeasurementRow{},
	}
}
