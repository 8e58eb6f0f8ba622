package backup

type CreateConfigRequest struct {
	Provider    Provider             `json:"provider"`
	Settings    *Settings            `json:"settings,omitempty"`
	Credentials *ProviderCredentials `json:"credentials,omitempty"`
}

type UpdateConfigRequest struct {
	Enabled     *bool                `json:"enabled,omitempty"`
	Settings    *Settings            `json:"settings,omitempty"`
	Credentials *ProviderCredentials `json:"credentials,omitempty"`
}

func (r UpdateConfigRequest) Empty() bool {
	return r.Enabled == nil && r.Settings == nil && r.Credentials == nil
}
