package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/the-lightning-land/wifid/connection"
	"github.com/the-lightning-land/wifid/wifidb"
)

type networkResponse struct {
	Mode       string `json:"mode"`
	Ssid       string `json:"ssid"`
	Ip         string `json:"ip,omitempty"`
	Connected  bool   `json:"connected"`
	State      string `json:"state,omitempty"`
	StoredSsid string `json:"storedSsid"`
	StoredAp   bool   `json:"storedAp"`
}

type networksResponseItem struct {
	Ssid       string `json:"ssid"`
	Encryption string `json:"encryption"`
	Quality    int    `json:"quality"`
}

type postNetworkRequest struct {
	Ssid        string `json:"ssid"`
	Pass        string `json:"pass"`
	Ap          bool   `json:"ap"`
	AutoDefault bool   `json:"autoDefault"`
	Save        bool   `json:"save"`
}

type postReconnectRequest struct {
	Save bool `json:"save"`
}

type networkConfigRequest struct {
	Ip      string `json:"ip"`
	Subnet  string `json:"subnet"`
	Gateway string `json:"gateway"`
}

type networkConfigResponse struct {
	Configured bool   `json:"configured"`
	Ip         string `json:"ip,omitempty"`
	Subnet     string `json:"subnet,omitempty"`
	Gateway    string `json:"gateway,omitempty"`
}

func (a *Api) networkStatus() *networkResponse {
	status := a.manager.Status()
	stored := a.manager.Credentials()

	res := &networkResponse{
		Mode:       status.Mode.String(),
		Ssid:       status.Ssid,
		Connected:  status.Connected,
		StoredSsid: stored.Ssid,
		StoredAp:   stored.ApMode,
	}

	if status.IP != nil {
		res.Ip = status.IP.String()
	}

	if a.reporter != nil {
		res.State = a.reporter.CurrentState().String()
	}

	return res
}

func (a *Api) handleGetNetwork() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.jsonResponse(w, a.networkStatus(), http.StatusOK)
	}
}

func (a *Api) handleGetNetworks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		networks, err := a.manager.WifiList()
		if err != nil {
			a.jsonFailure(w, err)
			return
		}

		res := make([]networksResponseItem, 0, len(networks))

		for _, n := range networks {
			res = append(res, networksResponseItem{
				Ssid:       n.Ssid,
				Encryption: n.Encryption.String(),
				Quality:    n.Rssi,
			})
		}

		a.jsonResponse(w, res, http.StatusOK)
	}
}

func (a *Api) handlePostNetwork() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := postNetworkRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		a.log.Infof("Connecting to %v (ap %v, save %v)", req.Ssid, req.Ap, req.Save)

		err = a.manager.Reconnect(connection.Credentials{
			Ssid:        req.Ssid,
			Pass:        req.Pass,
			ApMode:      req.Ap,
			AutoDefault: req.AutoDefault,
		}, req.Save)
		if err != nil {
			a.log.Warnf("Could not connect to %v: %v", req.Ssid, err)
			a.jsonFailure(w, err)
			return
		}

		a.jsonResponse(w, a.networkStatus(), http.StatusOK)
	}
}

func (a *Api) handlePostNetworkDefault() http.HandlerFunc {
	return a.handleReconnect(func(save bool) error {
		return a.manager.ReconnectDefault(save)
	})
}

func (a *Api) handlePostNetworkStored() http.HandlerFunc {
	return a.handleReconnect(func(save bool) error {
		return a.manager.ReconnectStored(save)
	})
}

func (a *Api) handleReconnect(reconnect func(save bool) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := postReconnectRequest{}

		// an empty body reconnects without saving
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil && err != io.EOF {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		err = reconnect(req.Save)
		if err != nil {
			a.jsonFailure(w, err)
			return
		}

		a.jsonResponse(w, a.networkStatus(), http.StatusOK)
	}
}

func (a *Api) handleDeleteNetwork() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := a.manager.Disconnect()
		if err != nil {
			a.jsonFailure(w, err)
			return
		}

		a.jsonResponse(w, a.networkStatus(), http.StatusOK)
	}
}

func parseMode(name string) (connection.Mode, bool) {
	switch name {
	case wifidb.ModeAP:
		return connection.ModeAP, true
	case wifidb.ModeSTA:
		return connection.ModeSTA, true
	default:
		return connection.ModeNone, false
	}
}

func (a *Api) handleGetNetworkConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["mode"]

		mode, ok := parseMode(name)
		if !ok {
			a.jsonError(w, fmt.Sprintf("Unknown mode %v", name), http.StatusBadRequest)
			return
		}

		config := a.manager.NetworkConfig(mode)

		res := &networkConfigResponse{
			Configured: config.Configured,
		}

		if config.Configured {
			res.Ip = config.LocalIP.String()
			res.Subnet = config.Subnet.String()

			if config.Gateway != nil {
				res.Gateway = config.Gateway.String()
			}
		}

		a.jsonResponse(w, res, http.StatusOK)
	}
}

// handlePutNetworkConfig applies the addressing on the next connect in that
// mode. Invalid addresses are ignored like ConfigAddress does.
func (a *Api) handlePutNetworkConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["mode"]

		mode, ok := parseMode(name)
		if !ok {
			a.jsonError(w, fmt.Sprintf("Unknown mode %v", name), http.StatusBadRequest)
			return
		}

		req := networkConfigRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		applied := a.manager.ConfigAddress(mode, net.ParseIP(req.Ip), net.ParseIP(req.Subnet), net.ParseIP(req.Gateway))

		// a rejected submission must not replace what was saved before
		if a.store != nil && applied {
			err := a.store.SetStaticConfig(name, &wifidb.StaticConfig{
				IP:      req.Ip,
				Subnet:  req.Subnet,
				Gateway: req.Gateway,
			})
			if err != nil {
				a.log.Errorf("Could not persist %v address: %v", name, err)
			}
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
