// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

const headerTemplate = `
{{- define "Header" -}}
// Code generated by tl2cpp. DO NOT EDIT.

#pragma once

#include "{{ .RuntimeHeader }}"
{{- range .Includes }}
#include "{{ . }}"
{{- end }}
{{- range .Decls }}

// TL {{ .Kind }} {{ .TLName }}
{{ template "StructDeclaration" . }}
{{- end }}
{{- range .Decls }}
{{- if .Generic }}
{{- template "Definitions" . }}
{{- end }}
{{- end }}
{{ end }}
`

const sourceTemplate = `
{{- define "Source" -}}
// Code generated by tl2cpp. DO NOT EDIT.

#include "{{ .Header }}"
{{- range .Decls }}
{{- template "Definitions" . }}
{{- end }}
{{ end }}
`

const storersTableTemplate = `
{{- define "StorersTable" -}}
// Code generated by tl2cpp. DO NOT EDIT.

#include "{{ .RuntimeHeader }}"
{{- range .Includes }}
#include "{{ . }}"
{{- end }}

void fill_tl_storers_ht(array<tl_storer_ptr> &tl_storers_ht) {
{{- range .Entries }}
  tl_storers_ht.set_value(string({{ CppString .Name }}), &{{ .Storer }});
{{- end }}
}
{{ end }}
`
