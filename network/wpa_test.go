package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/the-lightning-land/wifid/network/wpa"
)

func TestStatusFromState(t *testing.T) {
	tests := []struct {
		state string
		want  Status
	}{
		{state: wpa.StateCompleted, want: StatusConnected},
		{state: wpa.StateDisconnected, want: StatusDisconnected},
		{state: wpa.StateInactive, want: StatusDisconnected},
		{state: wpa.StateScanning, want: StatusAssociating},
		{state: wpa.StateAuthenticating, want: StatusAssociating},
		{state: wpa.StateAssociating, want: StatusAssociating},
		{state: wpa.StateAssociated, want: StatusAssociating},
		{state: wpa.StateFourWayHandshake, want: StatusAssociating},
		{state: wpa.StateGroupHandshake, want: StatusAssociating},
		{state: wpa.StateInterfaceDisabled, want: StatusNoShield},
		{state: wpa.StateUnknown, want: StatusConnectionLost},
		{state: "", want: StatusConnectionLost},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromState(tt.state))
		})
	}
}

func TestEncryptionOf(t *testing.T) {
	tests := []struct {
		name string
		bss  wpa.Bss
		want Encryption
	}{
		{name: "open", bss: wpa.Bss{}, want: EncryptionOpen},
		{name: "wep", bss: wpa.Bss{Privacy: true}, want: EncryptionWep},
		{name: "wpa", bss: wpa.Bss{Privacy: true, WpaKeyMgmt: []string{"wpa-psk"}}, want: EncryptionWpaPsk},
		{name: "wpa2", bss: wpa.Bss{Privacy: true, RsnKeyMgmt: []string{"wpa-psk"}}, want: EncryptionWpa2Psk},
		{name: "wpa3 transition", bss: wpa.Bss{Privacy: true, RsnKeyMgmt: []string{"sae", "wpa-psk-sha256"}}, want: EncryptionWpa2Psk},
		{
			name: "mixed",
			bss:  wpa.Bss{Privacy: true, RsnKeyMgmt: []string{"wpa-psk"}, WpaKeyMgmt: []string{"wpa-psk"}},
			want: EncryptionWpaWpa2Psk,
		},
		{name: "enterprise", bss: wpa.Bss{Privacy: true, RsnKeyMgmt: []string{"wpa-eap"}}, want: EncryptionWpa2Enterprise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bss := tt.bss
			assert.Equal(t, tt.want, encryptionOf(&bss))
		})
	}
}

func TestStatusAndEncryptionNames(t *testing.T) {
	assert.Equal(t, "CONNECTED", StatusConnected.String())
	assert.Equal(t, "wpa2-psk", EncryptionWpa2Psk.String())
}
