package location

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
)

type OfficeLocationServiceImpl struct {
	location.OfficeLocationRepository
}

func NewOfficeLocationService(locationRepository location.OfficeLocationRepository) location.OfficeLocationService {
	return &OfficeLocationServiceImpl{OfficeLocationRepository: locationRepository}
}

// Create implements location.OfficeLocationService.
func (s *OfficeLocationServiceImpl) Create(ctx context.Context, req location.CreateOfficeLocationRequest) (location.OfficeLocationResponse, error) {
	if err := req.Validate(); err != nil {
		return location.OfficeLocationResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	exists, err := s.OfficeLocationRepository.ExistsByName(ctx, name, nil)
	if err != nil {
		return location.OfficeLocationResponse{}, fmt.Errorf("failed to check location name: %w", err)
	}
	if exists {
		return location.OfficeLocationResponse{}, location.ErrLocationNameExists
	}

	newLocation := location.OfficeLocation{
		Name:         name,
		IPAddress:    emptyToNil(req.IPAddress),
		IPRangeStart: emptyToNil(req.IPRangeStart),
		IPRangeEnd:   emptyToNil(req.IPRangeEnd),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: location.DefaultRadiusMeters,
		IsActive:     true,
	}
	if req.RadiusMeters != nil {
		newLocation.RadiusMeters = *req.RadiusMeters
	}
	if req.IsActive != nil {
		newLocation.IsActive = *req.IsActive
	}

	if !newLocation.HasIPDetection() && !newLocation.HasGPSDetection() {
		return location.OfficeLocationResponse{}, location.ErrNoDetectionMethod
	}

	created, err := s.OfficeLocationRepository.Create(ctx, newLocation)
	if err != nil {
		return location.OfficeLocationResponse{}, fmt.Errorf("failed to create office location: %w", err)
	}

	return mapLocationToResponse(created), nil
}

// Update implements location.OfficeLocationService. An update may leave a
// location without a usable detection method; the resolver never matches it.
func (s *OfficeLocationServiceImpl) Update(ctx context.Context, req location.UpdateOfficeLocationRequest) (location.OfficeLocationResponse, error) {
	if err := req.Validate(); err != nil {
		return location.OfficeLocationResponse{}, err
	}

	current, err := s.OfficeLocationRepository.GetByID(ctx, req.ID)
	if err != nil {
		return location.OfficeLocationResponse{}, err
	}

	if err := location.ValidateMerged(req.Apply(current)); err != nil {
		return location.OfficeLocationResponse{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name

		exists, err := s.OfficeLocationRepository.ExistsByName(ctx, name, &req.ID)
		if err != nil {
			return location.OfficeLocationResponse{}, fmt.Errorf("failed to check location name: %w", err)
		}
		if exists {
			return location.OfficeLocationResponse{}, location.ErrLocationNameExists
		}
	}

	if err := s.OfficeLocationRepository.Update(ctx, req.ID, req); err != nil {
		return location.OfficeLocationResponse{}, fmt.Errorf("failed to update office location: %w", err)
	}

	updated, err := s.OfficeLocationRepository.GetByID(ctx, req.ID)
	if err != nil {
		return location.OfficeLocationResponse{}, err
	}

	return mapLocationToResponse(updated), nil
}

// Delete implements location.OfficeLocationService.
func (s *OfficeLocationServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.OfficeLocationRepository.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.OfficeLocationRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete office location: %w", err)
	}
	return nil
}

// GetByID implements location.OfficeLocationService.
func (s *OfficeLocationServiceImpl) GetByID(ctx context.Context, id string) (location.OfficeLocationResponse, error) {
	loc, err := s.OfficeLocationRepository.GetByID(ctx, id)
	if err != nil {
		return location.OfficeLocationResponse{}, err
	}
	return mapLocationToResponse(loc), nil
}

// List implements location.OfficeLocationService.
func (s *OfficeLocationServiceImpl) List(ctx context.Context, filter location.OfficeLocationFilter) (location.ListOfficeLocationResponse, error) {
	if err := filter.Validate(); err != nil {
		return location.ListOfficeLocationResponse{}, err
	}

	locations, total, err := s.OfficeLocationRepository.List(ctx, filter)
	if err != nil {
		return location.ListOfficeLocationResponse{}, fmt.Errorf("failed to list office locations: %w", err)
	}

	responses := make([]location.OfficeLocationResponse, 0, len(locations))
	for _, loc := range locations {
		responses = append(responses, mapLocationToResponse(loc))
	}

	return location.ListOfficeLocationResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Locations:  responses,
	}, nil
}

func mapLocationToResponse(l location.OfficeLocation) location.OfficeLocationResponse {
	return location.OfficeLocationResponse{
		ID:           l.ID,
		Name:         l.Name,
		IPAddress:    l.IPAddress,
		IPRangeStart: l.IPRangeStart,
		IPRangeEnd:   l.IPRangeEnd,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		RadiusMeters: l.RadiusMeters,
		IsActive:     l.IsActive,
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    l.UpdatedAt.Format(time.RFC3339),
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
