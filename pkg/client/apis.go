package client

import (
	"encoding/json"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/beltcalc/beltcalc/pkg/capacity"
	"github.com/beltcalc/beltcalc/pkg/config"
	"github.com/beltcalc/beltcalc/pkg/types"
)

func (c *Client) SetTrace(enabled bool) (string, error) {
	return c.Put("/trace", strconv.FormatBool(enabled))
}

func (c *Client) SetDefaultAngle(deg float64) (string, error) {
	return c.Put("/default-angle", strconv.FormatFloat(deg, 'f', -1, 64))
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

func (c *Client) GetTable() (*capacity.Table, error) {
	var table capacity.Table
	if err := c.getJSON("/table", &table); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get coefficient table")
	}
	return &table, nil
}

func (c *Client) ParseAngle(label capacity.AngleLabel) (*types.AngleResponse, error) {
	var resp types.AngleResponse
	if err := c.postJSON("/angle", types.AngleRequest{Label: label}, &resp); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to parse angle label")
	}
	return &resp, nil
}

func (c *Client) KFactor(req types.KFactorRequest) (*types.KFactorResponse, error) {
	var resp types.KFactorResponse
	if err := c.postJSON("/k-factor", req, &resp); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get shape factor")
	}
	return &resp, nil
}

func (c *Client) CrossSection(req types.GeometryRequest) (*types.CrossSectionResponse, error) {
	var resp types.CrossSectionResponse
	if err := c.postJSON("/cross-section", req, &resp); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get cross section")
	}
	return &resp, nil
}

func (c *Client) Capacity(req types.CapacityRequest) (*types.CapacityResponse, error) {
	var resp types.CapacityResponse
	if err := c.postJSON("/capacity", req, &resp); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get capacity")
	}
	return &resp, nil
}

func (c *Client) Size(req types.SizeRequest) (*types.SizeResponse, error) {
	var resp types.SizeResponse
	if err := c.postJSON("/size", req, &resp); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to select belt width")
	}
	return &resp, nil
}

func (c *Client) getJSON(path string, out any) error {
	ret, err := c.Get(path)
	if err != nil {
		return err
	}
	return pkgerrors.Wrapf(json.Unmarshal([]byte(ret), out), "failed to unmarshal response of %s", path)
}

func (c *Client) postJSON(path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to marshal request for %s", path)
	}
	ret, err := c.Post(path, string(payload))
	if err != nil {
		return err
	}
	return pkgerrors.Wrapf(json.Unmarshal([]byte(ret), out), "failed to unmarshal response of %s", path)
}
