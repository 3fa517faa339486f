package election

import (
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/jengzang/election-map-backend-go/internal/models"
)

func props(kv ...interface{}) *geojson.Feature {
	p := map[string]interface{}{}
	for i := 0; i+1 < len(kv); i += 2 {
		p[kv[i].(string)] = kv[i+1]
	}
	return &geojson.Feature{Properties: p}
}

func collection(features ...*geojson.Feature) *geojson.FeatureCollection {
	return &geojson.FeatureCollection{Features: features}
}

func testParties() []models.Party {
	return []models.Party{
		{Code: "jimin", Name: "自民", TotalVotes: 400, Municipalities: 3},
		{Code: "mirai", Name: "みらい", TotalVotes: 300, Municipalities: 3},
		{Code: "ishin", Name: "維新", TotalVotes: 200, Municipalities: 3},
		{Code: "kokumin", Name: "国民", TotalVotes: 100, Municipalities: 3},
	}
}

func testMunicipalities() map[string]models.MunicipalityRecord {
	return map[string]models.MunicipalityRecord{
		"01001": {Name: "札幌市", Pref: "北海道", ValidVotes: 100, Parties: map[string]float64{
			"jimin": 0.5, "mirai": 0.3, "ishin": 0.1, "kokumin": 0.1,
		}},
		"01002": {Name: "函館市", Pref: "北海道", ValidVotes: 200, Parties: map[string]float64{
			"jimin": 0.2, "mirai": 0.5, "ishin": 0.2, "kokumin": 0.1,
		}},
		"13101": {Name: "東京都千代田区", Pref: "東京都", ValidVotes: 300, Parties: map[string]float64{
			"jimin": 0.4, "mirai": 0.3, "ishin": 0.2, "kokumin": 0.1,
		}},
	}
}

// testDataset has three municipalities in two prefectures, one bloc each,
// plus a municipality feature with no election record.
func testDataset() *Dataset {
	features := map[models.Granularity]*geojson.FeatureCollection{
		models.GranularityMuni: collection(
			props("muni_code", float64(1001), "muni_name", "札幌市", "label_lat", 43.06, "label_lng", 141.35, "area_km2", 1121.0),
			props("muni_code", "01002", "muni_name", "函館市", "label_lat", 41.77, "label_lng", 140.73, "area_km2", 677.0),
			props("muni_code", "13101", "label_lat", 35.69, "label_lng", 139.75, "area_km2", 11.6),
			props("muni_code", "99999", "muni_name", "無名村", "pref_name", "架空県"),
		),
		models.GranularityPref: collection(
			props("pref_name", "北海道", "block_name", "北海道"),
			props("pref_name", "東京都", "block_name", "東京"),
		),
		models.GranularityBlock: collection(
			props("block_name", "北海道"),
			props("block_name", "東京"),
		),
	}
	return NewDataset(testParties(), testMunicipalities(), features, nil)
}

func testContext(p models.ModeParams) *Context {
	d := testDataset()
	return NewContext(d, BuildAggregates(d.Municipalities, d.PrefToBlock), p)
}

func f64(v float64) *float64 { return &v }
