package nodes

type Node struct {
	PubKey    string `yaml:"pubkey" json:"pubkey"`
	HTTP      string `yaml:"http" json:"http"`
	Messaging string `yaml:"messaging" json:"messaging"`
}

type File struct {
	Nodes []Node `yaml:"nodes" json:"nodes"`
}
