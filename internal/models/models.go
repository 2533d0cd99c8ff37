package models

import "time"

// Page is a raw HTML snapshot of one daily measurement page.
type Page struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Content      string    `json:"-"`
	DateDownload time.Time `json:"date_download"`
}

// Sensor is a monitoring station identified by its 3-digit code.
type Sensor struct {
	InternalID string    `json:"internal_id"`
	SensorID   string    `json:"sensor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Values holds the fourteen pollutant readings of one table row. A nil field
// means the cell carried no number.
type Values struct {
	PartikelPM10Mittel            *float64 `json:"partikelPM10Mittel"`
	PartikelPM10Ueberschreitungen *float64 `json:"partikelPM10Ueberschreitungen"`
	RussMittel                    *float64 `json:"russMittel"`
	RussMax3h                     *float64 `json:"russMax3h"`
	StickstoffdioxidMittel        *float64 `json:"stickstoffdioxidMittel"`
	StickstoffdioxidMax1h         *float64 `json:"stickstoffdioxidMax1h"`
	BenzolMittel                  *float64 `json:"benzolMittel"`
	BenzolMax1h                   *float64 `json:"benzolMax1h"`
	KohlenmonoxidMittel           *float64 `json:"kohlenmonoxidMittel"`
	KohlenmonoxidMax8hMittel      *float64 `json:"kohlenmonoxidMax8hMittel"`
	OzonMax1h                     *float64 `json:"ozonMax1h"`
	OzonMax8hMittel               *float64 `json:"ozonMax8hMittel"`
	SchwefeldioxidMittel          *float64 `json:"schwefeldioxidMittel"`
	SchwefeldioxidMax1h           *float64 `json:"schwefeldioxidMax1h"`
}

// ValueCount is the number of measurement columns following the sensor cell.
const ValueCount = 14

// Slice returns the values in table column order.
func (v Values) Slice() []*float64 {
	return []*float64{
		v.PartikelPM10Mittel,
		v.PartikelPM10Ueberschreitungen,
		v.RussMittel,
		v.RussMax3h,
		v.StickstoffdioxidMittel,
		v.StickstoffdioxidMax1h,
		v.BenzolMittel,
		v.BenzolMax1h,
		v.KohlenmonoxidMittel,
		v.KohlenmonoxidMax8hMittel,
		v.OzonMax1h,
		v.OzonMax8hMittel,
		v.SchwefeldioxidMittel,
		v.SchwefeldioxidMax1h,
	}
}

// ValuesFromSlice is the inverse of Values.Slice. Missing trailing entries stay nil.
func ValuesFromSlice(in []*float64) Values {
	get := func(i int) *float64 {
		if i < len(in) {
			return in[i]
		}
		return nil
	}
	return Values{
		PartikelPM10Mittel:            get(0),
		PartikelPM10Ueberschreitungen: get(1),
		RussMittel:                    get(2),
		RussMax3h:                     get(3),
		StickstoffdioxidMittel:        get(4),
		StickstoffdioxidMax1h:         get(5),
		BenzolMittel:                  get(6),
		BenzolMax1h:                   get(7),
		KohlenmonoxidMittel:           get(8),
		KohlenmonoxidMax8hMittel:      get(9),
		OzonMax1h:                     get(10),
		OzonMax8hMittel:               get(11),
		SchwefeldioxidMittel:          get(12),
		SchwefeldioxidMax1h:           get(13),
	}
}

// ValueFieldNames lists the measurement columns in table order.
var ValueFieldNames = []string{
	"partikelPM10Mittel",
	"partikelPM10Ueberschreitungen",
	"russMittel",
	"russMax3h",
	"stickstoffdioxidMittel",
	"stickstoffdioxidMax1h",
	"benzolMittel",
	"benzolMax1h",
	"kohlenmonoxidMittel",
	"kohlenmonoxidMax8hMittel",
	"ozonMax1h",
	"ozonMax8hMittel",
	"schwefeldioxidMittel",
	"schwefeldioxidMax1h",
}

// FieldNames is the export column order.
var FieldNames = append([]string{"sensor_id", "date"}, ValueFieldNames...)

// Measurement is one day of readings for one sensor. SensorCode is filled by
// queries that join the sensor and stays empty when the sensor row is gone.
type Measurement struct {
	ID               int64     `json:"id"`
	SensorInternalID string    `json:"sensor_internal_id"`
	SensorCode       string    `json:"sensor_id"`
	Date             time.Time `json:"date"`
	Values
	CreatedAt time.Time `json:"created_at"`
}

// DateLayout is the calendar-date format used in URLs, exports and queries.
const DateLayout = "2006-01-02"

// YearRange returns the half-open date interval covering year.
func YearRange(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

// RecentFrom returns the first day of a window of days calendar days ending on latest.
func RecentFrom(latest time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	return latest.UTC().Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))
}
