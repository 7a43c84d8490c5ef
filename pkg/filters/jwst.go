package filters

// Filter tables for the JWST imaging instruments. Wavelengths and
// bandwidths are in microns; pupil-wheel filters sit in the secondary
// wheel, and get priority when matching filenames.

const(
	NIRCAM = "NIRCAM"
	MIRI   = "MIRI"
)

var nircamFilters = []Filter{
	{Name: "F070W",  WavelengthMicrons: 0.704, BandwidthMicrons: 0.128},
	{Name: "F090W",  WavelengthMicrons: 0.901, BandwidthMicrons: 0.194},
	{Name: "F115W",  WavelengthMicrons: 1.154, BandwidthMicrons: 0.225},
	{Name: "F140M",  WavelengthMicrons: 1.404, BandwidthMicrons: 0.142},
	{Name: "F150W",  WavelengthMicrons: 1.501, BandwidthMicrons: 0.318},
	{Name: "F162M",  WavelengthMicrons: 1.626, BandwidthMicrons: 0.168, IsPupilWheel: true},
	{Name: "F164N",  WavelengthMicrons: 1.644, BandwidthMicrons: 0.020, IsPupilWheel: true},
	{Name: "F150W2", WavelengthMicrons: 1.671, BandwidthMicrons: 1.227},
	{Name: "F182M",  WavelengthMicrons: 1.845, BandwidthMicrons: 0.238},
	{Name: "F187N",  WavelengthMicrons: 1.874, BandwidthMicrons: 0.024},
	{Name: "F200W",  WavelengthMicrons: 1.990, BandwidthMicrons: 0.461},
	{Name: "F210M",  WavelengthMicrons: 2.093, BandwidthMicrons: 0.205},
	{Name: "F212N",  WavelengthMicrons: 2.120, BandwidthMicrons: 0.027},
	{Name: "F250M",  WavelengthMicrons: 2.503, BandwidthMicrons: 0.181},
	{Name: "F277W",  WavelengthMicrons: 2.786, BandwidthMicrons: 0.672},
	{Name: "F300M",  WavelengthMicrons: 2.996, BandwidthMicrons: 0.318},
	{Name: "F322W2", WavelengthMicrons: 3.247, BandwidthMicrons: 1.339},
	{Name: "F323N",  WavelengthMicrons: 3.237, BandwidthMicrons: 0.038, IsPupilWheel: true},
	{Name: "F335M",  WavelengthMicrons: 3.365, BandwidthMicrons: 0.347},
	{Name: "F356W",  WavelengthMicrons: 3.563, BandwidthMicrons: 0.787},
	{Name: "F360M",  WavelengthMicrons: 3.621, BandwidthMicrons: 0.372},
	{Name: "F405N",  WavelengthMicrons: 4.055, BandwidthMicrons: 0.046, IsPupilWheel: true},
	{Name: "F410M",  WavelengthMicrons: 4.092, BandwidthMicrons: 0.436},
	{Name: "F430M",  WavelengthMicrons: 4.280, BandwidthMicrons: 0.228},
	{Name: "F444W",  WavelengthMicrons: 4.421, BandwidthMicrons: 1.024},
	{Name: "F460M",  WavelengthMicrons: 4.624, BandwidthMicrons: 0.228},
	{Name: "F466N",  WavelengthMicrons: 4.654, BandwidthMicrons: 0.054, IsPupilWheel: true},
	{Name: "F470N",  WavelengthMicrons: 4.707, BandwidthMicrons: 0.051, IsPupilWheel: true},
	{Name: "F480M",  WavelengthMicrons: 4.834, BandwidthMicrons: 0.303},
}

var miriFilters = []Filter{
	{Name: "F560W",   WavelengthMicrons:  5.6, BandwidthMicrons:  1.2},
	{Name: "F770W",   WavelengthMicrons:  7.7, BandwidthMicrons:  2.2},
	{Name: "F1000W",  WavelengthMicrons: 10.0, BandwidthMicrons:  2.0},
	{Name: "F1130W",  WavelengthMicrons: 11.3, BandwidthMicrons:  0.7},
	{Name: "F1280W",  WavelengthMicrons: 12.8, BandwidthMicrons:  2.4},
	{Name: "F1500W",  WavelengthMicrons: 15.0, BandwidthMicrons:  3.0},
	{Name: "F1800W",  WavelengthMicrons: 18.0, BandwidthMicrons:  3.0},
	{Name: "F2100W",  WavelengthMicrons: 21.0, BandwidthMicrons:  5.0},
	{Name: "F2550W",  WavelengthMicrons: 25.5, BandwidthMicrons:  4.0},
	{Name: "F2550WR", WavelengthMicrons: 25.5, BandwidthMicrons:  4.0},
	{Name: "FND",     WavelengthMicrons: 13.0, BandwidthMicrons: 10.0},
}

// JWST is the registry of NIRCam and MIRI imaging filters.
var JWST = NewCatalog(
	InstrumentTable{NIRCAM, nircamFilters},
	InstrumentTable{MIRI, miriFilters},
)
