package realstations

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"evcharge/internal/domain"
)

// Client proxies the OpenChargeMap open-data API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// RealStation mirrors the station shape served for our own stations, plus
// provenance data from the upstream source.
type RealStation struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Location Location      `json:"location"`
	Chargers []RealCharger `json:"chargers"`
	RealTime RealTimeData  `json:"realTimeData"`
}

type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
}

type RealCharger struct {
	ID            string  `json:"id"`
	ConnectorType string  `json:"connectorType"`
	PowerKW       float64 `json:"powerKW"`
	Status        string  `json:"status"`
	Amperage      int     `json:"amperage,omitempty"`
	Voltage       int     `json:"voltage,omitempty"`
}

type RealTimeData struct {
	Source      string `json:"source"`
	LastUpdated string `json:"lastUpdated"`
	Status      string `json:"status"`
	Pricing     string `json:"pricing,omitempty"`
}

type ocmPOI struct {
	ID          int64 `json:"ID"`
	AddressInfo struct {
		Title        string  `json:"Title"`
		AddressLine1 string  `json:"AddressLine1"`
		Latitude     float64 `json:"Latitude"`
		Longitude    float64 `json:"Longitude"`
	} `json:"AddressInfo"`
	Connections []struct {
		ID             int64 `json:"ID"`
		ConnectionType *struct {
			Title string `json:"Title"`
		} `json:"ConnectionType"`
		PowerKW    *float64 `json:"PowerKW"`
		Amps       int      `json:"Amps"`
		Voltage    int      `json:"Voltage"`
		StatusType *struct {
			IsOperational bool `json:"IsOperational"`
		} `json:"StatusType"`
	} `json:"Connections"`
	StatusType *struct {
		IsOperational bool `json:"IsOperational"`
	} `json:"StatusType"`
	DateLastStatusUpdate string `json:"DateLastStatusUpdate"`
	UsageCost            string `json:"UsageCost"`
}

// ByLocation fetches stations within radiusKM of the point.
func (c *Client) ByLocation(ctx context.Context, lat, lon, radiusKM float64) ([]RealStation, error) {
	params := url.Values{}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("distance", strconv.FormatFloat(radiusKM, 'f', -1, 64))
	params.Set("distanceunit", "km")
	params.Set("maxresults", "100")
	params.Set("compact", "true")
	params.Set("verbose", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open charge map: unexpected status %d", resp.StatusCode)
	}

	var pois []ocmPOI
	if err := json.NewDecoder(resp.Body).Decode(&pois); err != nil {
		return nil, err
	}
	return transform(pois), nil
}

// ByBounds converts a bounding box into a center point plus covering radius
// and delegates to ByLocation.
func (c *Client) ByBounds(ctx context.Context, north, south, east, west float64) ([]RealStation, error) {
	centerLat := (north + south) / 2
	centerLon := (east + west) / 2
	radius := math.Max(
		math.Abs(north-south)*111,
		math.Abs(east-west)*111*math.Cos(centerLat*math.Pi/180),
	)
	return c.ByLocation(ctx, centerLat, centerLon, math.Ceil(radius))
}

func transform(pois []ocmPOI) []RealStation {
	stations := make([]RealStation, 0, len(pois))
	for _, poi := range pois {
		name := poi.AddressInfo.Title
		if name == "" {
			name = "Unknown Station"
		}
		address := poi.AddressInfo.AddressLine1
		if address == "" {
			address = "Address not available"
		}

		status := string(domain.ChargerStatusOutOfOrder)
		if poi.StatusType == nil || poi.StatusType.IsOperational {
			status = string(domain.ChargerStatusAvailable)
		}

		chargers := make([]RealCharger, 0, len(poi.Connections))
		for _, conn := range poi.Connections {
			connStatus := string(domain.ChargerStatusOutOfOrder)
			if conn.StatusType == nil || conn.StatusType.IsOperational {
				connStatus = string(domain.ChargerStatusAvailable)
			}
			var powerKW float64
			if conn.PowerKW != nil {
				powerKW = *conn.PowerKW
			}
			var connType string
			if conn.ConnectionType != nil {
				connType = conn.ConnectionType.Title
			}
			chargers = append(chargers, RealCharger{
				ID:            fmt.Sprintf("conn_%d", conn.ID),
				ConnectorType: mapConnectorType(connType),
				PowerKW:       powerKW,
				Status:        connStatus,
				Amperage:      conn.Amps,
				Voltage:       conn.Voltage,
			})
		}

		stations = append(stations, RealStation{
			ID:      fmt.Sprintf("ocm_%d", poi.ID),
			Name:    name,
			Address: address,
			Location: Location{
				Type:        "Point",
				Coordinates: []float64{poi.AddressInfo.Longitude, poi.AddressInfo.Latitude},
			},
			Chargers: chargers,
			RealTime: RealTimeData{
				Source:      "OpenChargeMap",
				LastUpdated: poi.DateLastStatusUpdate,
				Status:      status,
				Pricing:     poi.UsageCost,
			},
		})
	}
	return stations
}

func mapConnectorType(ocmType string) string {
	switch ocmType {
	case "Type 2 (Socket Only)", "Type 2 (Tethered)":
		return string(domain.ConnectorType2)
	case "CHAdeMO":
		return string(domain.ConnectorTypeCHAdeMO)
	case "CCS (Type 2)":
		return string(domain.ConnectorTypeCCS)
	case "Tesla Supercharger", "Tesla Destination":
		return string(domain.ConnectorTypeTesla)
	default:
		return string(domain.ConnectorType2)
	}
}
