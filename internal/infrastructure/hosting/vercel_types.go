package hosting

type vercelFile struct {
	File     string `json:"file"`
	Data     string `json:"data"`
	Encoding string `json:"encoding,omitempty"`
}

type vercelProjectSettings struct {
	Framework *string `json:"framework"`
}

type vercelCreateDeployment struct {
	Name            string                `json:"name"`
	Files           []vercelFile          `json:"files"`
	Target          string                `json:"target,omitempty"`
	ProjectSettings vercelProjectSettings `json:"projectSettings"`
}

type vercelDeployment struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	ReadyState string `json:"readyState"`
	ProjectID  string `json:"projectId"`
}

type vercelEvent struct {
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Text    string `json:"text"`
	Payload struct {
		Text string `json:"text"`
	} `json:"payload"`
}

type vercelDomainStatus struct {
	Available bool `json:"available"`
}

type vercelDomainPrice struct {
	Price  float64 `json:"price"`
	Period int     `json:"period"`
}

type vercelBuyDomain struct {
	Name          string  `json:"name"`
	ExpectedPrice float64 `json:"expectedPrice"`
	Renew         bool    `json:"renew"`
}

type vercelBuyResponse struct {
	Domain struct {
		UID  string `json:"uid"`
		Name string `json:"name"`
	} `json:"domain"`
}

type vercelError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
