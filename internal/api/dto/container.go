package dto

import (
	"time"

	"smart-waste-service/internal/ports"
)

type CollectionCandidateResponse struct {
	UID        string             `json:"uid"`
	Name       string             `json:"name"`
	Location   CoordinateResponse `json:"location"`
	FillLevel  int                `json:"fill_level"`
	FillStatus string             `json:"fill_status"`
	BatteryPct int                `json:"battery_pct"`
	ObservedAt time.Time          `json:"observed_at"`
}

type ListCollectionCandidatesResponse struct {
	FillThreshold int                           `json:"fill_threshold"`
	Containers    []CollectionCandidateResponse `json:"containers"`
}

func NewCollectionCandidateResponse(c ports.CollectionCandidate) CollectionCandidateResponse {
	res := CollectionCandidateResponse{
		UID:        c.Container.UID,
		Name:       c.Container.Name,
		FillLevel:  c.Container.FillLevel,
		FillStatus: c.Container.FillStatus(),
		BatteryPct: c.BatteryPct,
		ObservedAt: c.ObservedAt,
	}
	if c.Container.Location != nil {
		res.Location = CoordinateResponse{Lat: c.Container.Location.Lat, Lon: c.Container.Location.Lon}
	}
	return res
}
