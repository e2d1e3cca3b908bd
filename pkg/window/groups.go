package window

// Metric taxonomy per cadence. Order is fixed: it determines request order
// within a leaf and therefore ordinal key assignment.
var minuteGroups = []Group{
	{Name: "traffic_exposure", Metrics: []string{"traffic_in", "traffic_out", "exposure_rate", "avg_exposure_time"}},
	{Name: "engagement", Metrics: []string{"engagement_rate", "avg_engagement_time"}},
	{Name: "sales", Metrics: []string{"sales", "transactions", "avg_transaction_value", "sales_per_shopper"}},
	{Name: "demographics", Metrics: []string{"demographics_male", "demographics_female", "demographics_avg_age"}},
	{Name: "staff", Metrics: []string{"staff_hours", "shopper_to_associate_ratio"}},
	{Name: "conversion", Metrics: []string{"conversion_rate", "draw_rate"}},
	{Name: "guest_wifi", Metrics: []string{"wifi_visitors", "wifi_new_visitors", "wifi_dwell_time"}},
}

var dayGroups = []Group{
	{Name: "daily", Metrics: []string{"traffic_in", "traffic_out", "sales", "transactions", "conversion_rate", "avg_transaction_value"}},
}
