// ABOUTME: Time-of-day lookup tables for crash susceptibility and focus.
// ABOUTME: The crash table is coarse; the focus table peaks mid-morning and early afternoon.
package factors

import "time"

// CircadianBucket applies Value from StartHour until the next bucket starts.
type CircadianBucket struct {
	StartHour float64
	Label     string
	Value     float64
}

// CircadianTable is an ordered set of buckets covering a whole day.
type CircadianTable struct {
	Name    string
	Buckets []CircadianBucket
}

// CrashCircadian has four buckets: night, morning, midday, evening.
var CrashCircadian = CircadianTable{
	Name: "crash",
	Buckets: []CircadianBucket{
		{StartHour: 0, Label: "night", Value: 0.9},
		{StartHour: 6, Label: "morning", Value: 0.7},
		{StartHour: 12, Label: "midday", Value: 1.0},
		{StartHour: 17, Label: "evening", Value: 0.8},
		{StartHour: 22, Label: "night", Value: 0.9},
	},
}

// FocusCircadian has six buckets.
var FocusCircadian = CircadianTable{
	Name: "focus",
	Buckets: []CircadianBucket{
		{StartHour: 0, Label: "night", Value: 0.5},
		{StartHour: 6, Label: "early_morning", Value: 0.8},
		{StartHour: 9, Label: "mid_morning", Value: 1.0},
		{StartHour: 12, Label: "post_lunch", Value: 0.8},
		{StartHour: 14, Label: "early_afternoon", Value: 0.95},
		{StartHour: 17, Label: "evening", Value: 0.65},
	},
}

// Lookup returns the bucket covering the wall-clock time of at.
func (t CircadianTable) Lookup(at time.Time) CircadianBucket {
	hour := float64(at.Hour()) + float64(at.Minute())/60
	var found CircadianBucket
	for _, b := range t.Buckets {
		if b.StartHour > hour {
			break
		}
		found = b
	}
	return found
}

// Circadian returns the table value at at.
func Circadian(t CircadianTable, at time.Time) float64 {
	return t.Lookup(at).Value
}
