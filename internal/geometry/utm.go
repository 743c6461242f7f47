// Package geometry provides the planar projection and building-filter
// primitives used by the tiered building loader. All distance and area math
// runs in a locally accurate UTM zone so results are metrically correct.
package geometry

import "math"

// WGS84 ellipsoid and UTM parameters.
const (
	semiMajorAxis = 6378137.0
	flattening    = 1 / 298.257223563

	utmScale         = 0.9996
	utmFalseEasting  = 500e3
	utmFalseNorthing = 10000e3 // southern hemisphere only

	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// Series coefficients for the Karney transverse-Mercator expansion,
// precomputed for the WGS84 third flattening n = f/(2-f). Sixth order is
// good to well under a millimeter, far inside the 1e-6 degree round-trip
// contract.
var (
	n1 = flattening / (2 - flattening)
	n2 = n1 * n1
	n3 = n2 * n1
	n4 = n3 * n1
	n5 = n4 * n1
	n6 = n5 * n1

	eccentricity = math.Sqrt(flattening * (2 - flattening))

	// Rectifying radius.
	radiusA = semiMajorAxis / (1 + n1) * (1 + n2/4 + n4/64 + n6/256)

	alpha = [6]float64{
		n1/2 - 2*n2/3 + 5*n3/16 + 41*n4/180 - 127*n5/288 + 7891*n6/37800,
		13*n2/48 - 3*n3/5 + 557*n4/1440 + 281*n5/630 - 1983433*n6/1935360,
		61*n3/240 - 103*n4/140 + 15061*n5/26880 + 167603*n6/181440,
		49561*n4/161280 - 179*n5/168 + 6601661*n6/7257600,
		34729*n5/80640 - 3418889*n6/1995840,
		212378941 * n6 / 149504640,
	}

	beta = [6]float64{
		n1/2 - 2*n2/3 + 37*n3/96 - n4/360 - 81*n5/512 + 96199*n6/604800,
		n2/48 + n3/15 - 437*n4/1440 + 46*n5/105 - 1118711*n6/3870720,
		17*n3/480 - 37*n4/840 - 209*n5/4480 + 5569*n6/90720,
		4397*n4/161280 - 11*n5/504 - 830251*n6/7257600,
		4583*n5/161280 - 108847*n6/3991680,
		20648693 * n6 / 638668800,
	}
)

// Projector converts between WGS84 geographic coordinates and planar UTM
// coordinates for a single (zone, hemisphere) pair. Construct one per query
// and reuse it for every distance and area computation in that query.
type Projector struct {
	zone  int
	south bool
	lon0  float64 // central meridian, radians
}

// ZoneFor returns the UTM zone for a longitude, clamped to [1, 60].
func ZoneFor(lon float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone
}

// NewProjector builds a Projector for the zone and hemisphere containing the
// given reference point. Inputs outside [-180,180]/[-90,90] are undefined;
// callers pass trusted airport coordinates.
func NewProjector(lon, lat float64) *Projector {
	return ForZone(ZoneFor(lon), lat < 0)
}

// ForZone builds a Projector for an explicit UTM zone and hemisphere.
func ForZone(zone int, south bool) *Projector {
	return &Projector{
		zone:  zone,
		south: south,
		lon0:  float64(zone*6-183) * degToRad,
	}
}

// Zone returns the UTM zone number.
func (p *Projector) Zone() int { return p.zone }

// South reports whether the projector covers the southern hemisphere.
func (p *Projector) South() bool { return p.south }

// ToPlanar projects geographic degrees to UTM easting/northing in meters.
func (p *Projector) ToPlanar(lon, lat float64) (x, y float64) {
	phi := lat * degToRad
	lam := lon*degToRad - p.lon0

	sinPhi := math.Sin(phi)
	tau := math.Sinh(math.Atanh(sinPhi) - eccentricity*math.Atanh(eccentricity*sinPhi))

	xiP := math.Atan2(tau, math.Cos(lam))
	etaP := math.Asinh(math.Sin(lam) / math.Hypot(tau, math.Cos(lam)))

	xi, eta := xiP, etaP
	for j := 1; j <= 6; j++ {
		k := 2 * float64(j)
		xi += alpha[j-1] * math.Sin(k*xiP) * math.Cosh(k*etaP)
		eta += alpha[j-1] * math.Cos(k*xiP) * math.Sinh(k*etaP)
	}

	x = utmScale*radiusA*eta + utmFalseEasting
	y = utmScale * radiusA * xi
	if p.south {
		y += utmFalseNorthing
	}
	return x, y
}

// ToGeographic is the inverse of ToPlanar, returning degrees.
func (p *Projector) ToGeographic(x, y float64) (lon, lat float64) {
	northing := y
	if p.south {
		northing -= utmFalseNorthing
	}
	xi := northing / (utmScale * radiusA)
	eta := (x - utmFalseEasting) / (utmScale * radiusA)

	xiP, etaP := xi, eta
	for j := 1; j <= 6; j++ {
		k := 2 * float64(j)
		xiP -= beta[j-1] * math.Sin(k*xi) * math.Cosh(k*eta)
		etaP -= beta[j-1] * math.Cos(k*xi) * math.Sinh(k*eta)
	}

	tauP := math.Sin(xiP) / math.Hypot(math.Sinh(etaP), math.Cos(xiP))
	lam := math.Atan2(math.Sinh(etaP), math.Cos(xiP))

	// Invert the conformal latitude by fixed-point iteration; converges in a
	// handful of steps for any point on the ellipsoid.
	phi := math.Atan(tauP)
	for i := 0; i < 10; i++ {
		next := math.Atan(math.Sinh(
			math.Asinh(tauP) + eccentricity*math.Atanh(eccentricity*math.Sin(phi)),
		))
		if math.Abs(next-phi) < 1e-14 {
			phi = next
			break
		}
		phi = next
	}

	return (lam + p.lon0) * radToDeg, phi * radToDeg
}
