package emitter

// Stream names on the output
const (
	StreamLocations = "locations"
	StreamMetrics   = "metrics"
)

func stringType() map[string]interface{} {
	return map[string]interface{}{"type": []string{"null", "string"}}
}

func numberType() map[string]interface{} {
	return map[string]interface{}{"type": []string{"null", "number"}}
}

func integerType() map[string]interface{} {
	return map[string]interface{}{"type": []string{"null", "integer"}}
}

// LocationSchema describes the flattened location stream, keyed by the
// remote location id.
func LocationSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":                 stringType(),
			"parent_id":          stringType(),
			"name":               stringType(),
			"type":               stringType(),
			"area":               stringType(),
			"attributes":         stringType(),
			"street_address":     stringType(),
			"pos_id":             stringType(),
			"store_id":           stringType(),
			"time_zone":          stringType(),
			"time_zone_abbrev":   stringType(),
			"current_utc_offset": stringType(),
			"date":               stringType(),
		},
	}
}

// LocationKeyProperties is the key of the locations stream
func LocationKeyProperties() []string {
	return []string{"id"}
}

// MetricSchema describes the flattened metric stream, keyed by the per-run
// ordinal assigned during extraction.
func MetricSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"key":            integerType(),
			"name":           stringType(),
			"rid":            stringType(),
			"type":           stringType(),
			"start":          stringType(),
			"finish":         stringType(),
			"validity":       stringType(),
			"value":          numberType(),
			"index":          integerType(),
			"execution_date": stringType(),
			"from_date":      stringType(),
			"till_date":      stringType(),
			"from_time":      stringType(),
			"till_time":      stringType(),
		},
	}
}

// MetricKeyProperties is the key of the metrics stream
func MetricKeyProperties() []string {
	return []string{"key"}
}
