package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mediatrack/mediatrack/internal/database"
	"github.com/mediatrack/mediatrack/internal/types"
)

type AppendPlayRequest struct {
	MediaId  string `json:"media_id"`
	Title    string `json:"title,omitempty"`
	Position int    `json:"position"`
	Duration int    `json:"duration,omitempty"`
}

type AddFavoriteRequest struct {
	MediaId string `json:"media_id"`
	Title   string `json:"title,omitempty"`
}

type SetSkipMarkerRequest struct {
	MediaId string `json:"media_id"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

type AppendSearchRequest struct {
	Query string `json:"query"`
}

func (s *MediaTrackApp) appendPlay(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	var req AppendPlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MediaId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	err := s.db.AppendPlay(r.Context(), database.PlayRecord{
		Handle:   handle,
		MediaId:  req.MediaId,
		Title:    req.Title,
		Position: req.Position,
		Duration: req.Duration,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *MediaTrackApp) getPlays(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	var limit int
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		if limit, err = strconv.Atoi(limitStr); err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	dbPlays, err := s.db.ListPlays(r.Context(), handle, limit)
	if err != nil {
		s.log.Println("list plays:", err)
		dbPlays = nil
	}

	plays := make([]types.PlayRecord, 0, len(dbPlays))
	for _, p := range dbPlays {
		plays = append(plays, types.PlayRecord{
			MediaId:  p.MediaId,
			Title:    p.Title,
			Position: p.Position,
			Duration: p.Duration,
			PlayedAt: p.PlayedAt,
		})
	}

	s.writeJson(w, http.StatusOK, plays)
}

func (s *MediaTrackApp) addFavorite(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	var req AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MediaId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	err := s.db.AddFavorite(r.Context(), database.Favorite{
		Handle:  handle,
		MediaId: req.MediaId,
		Title:   req.Title,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *MediaTrackApp) removeFavorite(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	mediaId := r.URL.Query().Get("media_id")
	if mediaId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.RemoveFavorite(r.Context(), handle, mediaId); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *MediaTrackApp) getFavorites(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	dbFavs, err := s.db.ListFavorites(r.Context(), handle)
	if err != nil {
		s.log.Println("list favorites:", err)
		dbFavs = nil
	}

	favs := make([]types.Favorite, 0, len(dbFavs))
	for _, f := range dbFavs {
		favs = append(favs, types.Favorite{
			MediaId: f.MediaId,
			Title:   f.Title,
			AddedAt: f.AddedAt,
		})
	}

	s.writeJson(w, http.StatusOK, favs)
}

func (s *MediaTrackApp) setSkipMarker(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	var req SetSkipMarkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MediaId == "" || req.End < req.Start {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	err := s.db.SetSkipMarker(r.Context(), database.SkipMarker{
		Handle:  handle,
		MediaId: req.MediaId,
		Start:   req.Start,
		End:     req.End,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *MediaTrackApp) getSkipMarker(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	mediaId := r.URL.Query().Get("media_id")
	if mediaId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	marker, err := s.db.GetSkipMarker(r.Context(), handle, mediaId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, types.SkipMarker{
		MediaId: marker.MediaId,
		Start:   marker.Start,
		End:     marker.End,
	})
}

func (s *MediaTrackApp) appendSearch(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	var req AppendSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	err := s.db.AppendSearch(r.Context(), database.SearchRecord{
		Handle: handle,
		Query:  req.Query,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *MediaTrackApp) getSearches(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	dbRecs, err := s.db.ListSearches(r.Context(), handle, 0)
	if err != nil {
		s.log.Println("list searches:", err)
		dbRecs = nil
	}

	recs := make([]types.SearchRecord, 0, len(dbRecs))
	for _, rec := range dbRecs {
		recs = append(recs, types.SearchRecord{
			Query:      rec.Query,
			SearchedAt: rec.SearchedAt,
		})
	}

	s.writeJson(w, http.StatusOK, recs)
}
