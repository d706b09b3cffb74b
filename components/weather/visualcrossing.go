package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/krishidhan/sahayak/components/geo"
)

const vcTimelineURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"

// vcElements keeps the timeline response down to the fields we read.
const vcElements = "temp,feelslike,humidity,precip,precipprob,windspeed,winddir,visibility,uvindex,cloudcover,conditions"

// Visual Crossing reports metric wind in km/h; readings use m/s.
const kmhToMS = 0.277778

// VisualCrossing reads current conditions from the Visual Crossing
// timeline endpoint.
type VisualCrossing struct {
	APIKey      string
	TimelineURL string
	HTTPClient  *http.Client
}

// NewVisualCrossing builds a client with production defaults.
func NewVisualCrossing(apiKey string) *VisualCrossing {
	return &VisualCrossing{
		APIKey:      apiKey,
		TimelineURL: vcTimelineURL,
		HTTPClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Current fetches metric current conditions for pt.
func (c *VisualCrossing) Current(ctx context.Context, pt geo.Point) (*Conditions, error) {
	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("unitGroup", "metric")
	q.Set("contentType", "json")
	q.Set("include", "current")
	q.Set("elements", vcElements)

	endpoint := fmt.Sprintf("%s/%s,%s?%s",
		c.TimelineURL, formatCoord(pt.Lat), formatCoord(pt.Lon), q.Encode())

	var payload vcTimeline
	if err := getJSON(ctx, c.HTTPClient, endpoint, nil, &payload); err != nil {
		return nil, fmt.Errorf("visualcrossing: %w", err)
	}
	return payload.conditions(pt), nil
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

type vcTimeline struct {
	ResolvedAddress   string `json:"resolvedAddress"`
	CurrentConditions struct {
		Temp       *float64 `json:"temp"`
		FeelsLike  *float64 `json:"feelslike"`
		Humidity   *float64 `json:"humidity"`
		Precip     *float64 `json:"precip"`
		PrecipProb *float64 `json:"precipprob"`
		WindSpeed  *float64 `json:"windspeed"`
		WindDir    *float64 `json:"winddir"`
		Visibility *float64 `json:"visibility"`
		UVIndex    *float64 `json:"uvindex"`
		CloudCover *float64 `json:"cloudcover"`
		Conditions string   `json:"conditions"`
	} `json:"currentConditions"`
}

func (t *vcTimeline) conditions(pt geo.Point) *Conditions {
	cur := t.CurrentConditions
	c := &Conditions{
		Place:         t.ResolvedAddress,
		Point:         pt,
		Source:        SourceVisualCrossing,
		Description:   cur.Conditions,
		TemperatureC:  cur.Temp,
		FeelsLikeC:    cur.FeelsLike,
		HumidityPct:   cur.Humidity,
		WindDeg:       cur.WindDir,
		VisibilityKm:  cur.Visibility,
		CloudCoverPct: cur.CloudCover,
		RainChancePct: cur.PrecipProb,
		UVIndex:       cur.UVIndex,
	}
	if cur.WindSpeed != nil {
		c.WindSpeedMS = f64(*cur.WindSpeed * kmhToMS)
	}
	var precip float64
	if cur.Precip != nil {
		precip = *cur.Precip
	}
	c.PrecipMM = f64(precip)
	return c
}
