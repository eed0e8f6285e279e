package cmd

type DeclarationInfo struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	SchemaName  string   `json:"schemaName"`
	Description string   `json:"description,omitempty"`
	Variants    []string `json:"variants,omitempty"`
	Implements  []string `json:"implements,omitempty"`
}

type MemberInfo struct {
	TypeName    string `json:"typeName,omitempty"`
	Name        string `json:"name"`
	JSONName    string `json:"jsonName"`
	GraphQLType string `json:"graphqlType"`
	GoType      string `json:"goType"`
	Description string `json:"description,omitempty"`
	Deprecated  string `json:"deprecated,omitempty"`
}

type GeneratedFile struct {
	Target       string `json:"target"`
	Output       string `json:"output"`
	Declarations int    `json:"declarations"`
}
