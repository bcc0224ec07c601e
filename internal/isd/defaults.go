package isd

// Units attached to the default scaled measures.
const (
	UnitAngularDegrees  = "angular_degrees"
	UnitMeters          = "meters"
	UnitMetersPerSecond = "meters_per_second"
	UnitDegreesCelsius  = "degrees_celsius"
	UnitHectopascals    = "hectopascals"
)

// Default section names.
const (
	SectionControl   = "control"
	SectionMandatory = "mandatory"
)

var (
	controlSection = MustSection(NewSection(SectionControl,
		MustMeasure(NewRawMeasure(MeasureUSAF, Columns(5, 10), Bare())),
		MustMeasure(NewRawMeasure(MeasureWBAN, Columns(11, 15), Bare())),
		MustMeasure(NewRawMeasure(MeasureDate, Columns(16, 23))),
		MustMeasure(NewRawMeasure(MeasureTime, Columns(24, 27))),
		MustMeasure(NewCodedMeasure("data_source_flag", Columns(28, 28), DataSourceFlags)),
		MustMeasure(NewScaledMeasure("latitude", Columns(29, 34), 1000,
			WithMissing("+99999"), WithUnit(UnitAngularDegrees))),
		MustMeasure(NewScaledMeasure("longitude", Columns(35, 41), 1000,
			WithMissing("+999999"), WithUnit(UnitAngularDegrees))),
		MustMeasure(NewCodedMeasure("code", Columns(42, 46), GeophysicalReportTypes)),
		MustMeasure(NewScaledMeasure("elevation_dimension", Columns(47, 51), 1,
			WithMissing("+9999"), WithUnit(UnitMeters))),
		MustMeasure(NewRawMeasure("call_letter_identifier", Columns(52, 56), WithMissing("99999"))),
		MustMeasure(NewCodedMeasure("quality_control_process_name", Columns(57, 60), QualityControlProcesses)),
	))

	mandatorySection = MustSection(NewSection(SectionMandatory,
		MustMeasure(NewScaledMeasure("wind_observation_direction_angle", Columns(61, 63), 1,
			WithMissing("999"), WithUnit(UnitAngularDegrees))),
		MustMeasure(NewCodedMeasure("wind_observation_direction_quality_code", Columns(64, 64), QualityCodes)),
		MustMeasure(NewCodedMeasure("wind_observation_type_code", Columns(65, 65), WindObservationTypes)),
		MustMeasure(NewScaledMeasure("wind_observation_speed_rate", Columns(66, 69), 10,
			WithMissing("9999"), WithUnit(UnitMetersPerSecond))),
		MustMeasure(NewCodedMeasure("wind_observation_speed_quality_code", Columns(70, 70), QualityCodes)),
		MustMeasure(NewScaledMeasure("sky_condition_observation_ceiling_height_dimension", Columns(71, 75), 1,
			WithMissing("99999"), WithUnit(UnitMeters))),
		MustMeasure(NewCodedMeasure("sky_condition_observation_ceiling_quality_code", Columns(76, 76), QualityCodes)),
		MustMeasure(NewCodedMeasure("sky_condition_observation_ceiling_determination_code", Columns(77, 77), CeilingDeterminations)),
		MustMeasure(NewCodedMeasure("sky_condition_observation_cavok_code", Columns(78, 78), CAVOKCodes)),
		MustMeasure(NewScaledMeasure("visibility_observation_distance_dimension", Columns(79, 84), 1,
			WithMissing("999999"), WithUnit(UnitMeters))),
		MustMeasure(NewCodedMeasure("visibility_observation_distance_quality_code", Columns(85, 85), QualityCodes)),
		MustMeasure(NewCodedMeasure("visibility_observation_variability_code", Columns(86, 86), VisibilityVariabilityCodes)),
		MustMeasure(NewCodedMeasure("visibility_observation_quality_variability_code", Columns(87, 87), QualityCodes)),
		MustMeasure(NewScaledMeasure("air_temperature_observation_air_temperature", Columns(88, 92), 10,
			WithMissing("+9999"), WithUnit(UnitDegreesCelsius))),
		MustMeasure(NewCodedMeasure("air_temperature_observation_air_temperature_quality_code", Columns(93, 93), QualityCodes)),
		MustMeasure(NewScaledMeasure("air_temperature_observation_dew_point_temperature", Columns(94, 98), 10,
			WithMissing("+9999"), WithUnit(UnitDegreesCelsius))),
		MustMeasure(NewCodedMeasure("air_temperature_observation_dew_point_quality_code", Columns(99, 99), QualityCodes)),
		MustMeasure(NewScaledMeasure("atmospheric_pressure_observation_sea_level_pressure", Columns(100, 104), 10,
			WithMissing("99999"), WithUnit(UnitHectopascals))),
		MustMeasure(NewCodedMeasure("atmospheric_pressure_observation_sea_level_pressure_quality_code", Columns(105, 105), QualityCodes)),
	))
)

// ControlSection returns the control data section: station identity,
// observation time, position and report metadata (columns 5-60).
func ControlSection() Section { return controlSection }

// MandatorySection returns the mandatory data section: wind, sky condition,
// visibility, temperature and sea level pressure (columns 61-105).
func MandatorySection() Section { return mandatorySection }

// DefaultSections returns the control and mandatory sections, in that order.
func DefaultSections() []Section {
	return []Section{controlSection, mandatorySection}
}
