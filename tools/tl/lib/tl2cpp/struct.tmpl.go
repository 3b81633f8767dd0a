// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

const structTemplate = `
{{- define "StructDeclaration" -}}
{{ if .TemplateParams -}}
template <{{ TemplateList .TemplateParams }}>
{{ end -}}
struct {{ .Name }}{{ if .Base }} final : {{ .Base }}{{ end }} {
{{- range .Members }}
  {{ .Type }} {{ .Name }}{{ if not $.HasConstructor }}{}{{ end }};
{{- end }}
{{- if .HasConstructor }}

  explicit {{ .Name }}({{ Formals .Members }}) : {{ MemberInits .Members }} {}
{{- end }}
{{- if .Members }}
{{ end }}
{{- range .Methods }}
  {{ if .TemplateParams }}template <{{ TemplateList .TemplateParams }}>
  {{ end }}{{ .Declaration }};
{{- end }}
};
{{- end }}

{{- define "Definitions" }}
{{- range .Definitions }}

{{ range .Templates }}{{ . }}
{{ end }}{{ .Signature }} {
{{- range .Body }}
  {{ . }}
{{- end }}
}
{{- end }}
{{- end }}
`
