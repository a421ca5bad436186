// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package status reads the App Store version state of an app through the
// worker and decides whether its localizations are safe to edit.
package status

import (
	"context"

	"rosetta/cli/internal/bridge"
	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/pipeline"
	"rosetta/cli/internal/pkg/json"
	"rosetta/cli/internal/snapshot"
)

// Version is one App Store version as reported by the worker.
type Version struct {
	ID            string `json:"id"`
	VersionString string `json:"versionString"`
	AppStoreState string `json:"appStoreState"`
	CreatedDate   string `json:"createdDate,omitempty"`
	ReviewType    string `json:"reviewType,omitempty"`
	ReleaseType   string `json:"releaseType,omitempty"`
	Downloadable  bool   `json:"downloadable"`
}

// Report is the decoded reply of the version status call.
type Report struct {
	AppID          string    `json:"appId"`
	AppName        string    `json:"appName"`
	BundleID       string    `json:"bundleId"`
	CurrentVersion *Version  `json:"currentVersion"`
	AllVersions    []Version `json:"allVersions"`
	LastUpdated    string    `json:"lastUpdated,omitempty"`
}

// Fetch asks the worker for the version status of identity.
func Fetch(ctx context.Context, b bridge.Bridge, identity string) (Report, error) {
	if err := snapshot.ValidateIdentity(identity); err != nil {
		return Report{}, err
	}
	out, err := b.Invoke(ctx, pipeline.FnVerifyAccess, identity)
	if err != nil {
		return Report{}, err
	}
	if err := out.Err(); err != nil {
		return Report{}, rerrors.Wrapf(rerrors.AccessDenied, err, "cannot access %s", identity)
	}
	if out.IsNull() {
		return Report{}, rerrors.New(rerrors.ProtocolFault, "worker returned no version status")
	}
	var r Report
	if err := json.Unmarshal(out.Data, &r); err != nil {
		return Report{}, rerrors.Wrap(rerrors.ProtocolFault, "decode version status", err)
	}
	if r.BundleID == "" {
		r.BundleID = identity
	}
	return r, nil
}

// Tone is how a state should be presented.
type Tone int

const (
	ToneOK Tone = iota
	ToneCaution
	ToneStop
	ToneUnknown
)

// Assessment says whether a version in some state may be edited.
type Assessment struct {
	Editable bool
	Tone     Tone
	Label    string
}

// Assess classifies an App Store state.
func Assess(state string) Assessment {
	switch state {
	case "PREPARE_FOR_SUBMISSION":
		return Assessment{Editable: true, Tone: ToneOK, Label: "Ready for editing"}
	case "DEVELOPER_REJECTED", "METADATA_REJECTED", "REJECTED":
		return Assessment{Editable: true, Tone: ToneCaution, Label: "Can be edited (rejected)"}
	case "INVALID_BINARY":
		return Assessment{Editable: true, Tone: ToneCaution, Label: "Can be edited (invalid binary)"}
	case "WAITING_FOR_REVIEW":
		return Assessment{Tone: ToneStop, Label: "Waiting for review, do not edit"}
	case "IN_REVIEW":
		return Assessment{Tone: ToneStop, Label: "In review, do not edit"}
	case "PENDING_DEVELOPER_RELEASE":
		return Assessment{Tone: ToneStop, Label: "Pending release, do not edit"}
	case "READY_FOR_SALE":
		return Assessment{Tone: ToneStop, Label: "Published, do not edit"}
	}
	if state == "" {
		state = "Unknown"
	}
	return Assessment{Tone: ToneUnknown, Label: "Unknown status: " + state}
}

// Advice is the workflow recommendation for the current version.
type Advice struct {
	Tone     Tone
	Headline string
	Steps    []string
}

// Recommend returns what to do next given the current version.
// A report without a current version gets no advice.
func Recommend(r Report) (Advice, bool) {
	v := r.CurrentVersion
	if v == nil {
		return Advice{}, false
	}
	name := v.VersionString
	if name == "" {
		name = "Unknown"
	}
	switch v.AppStoreState {
	case "PREPARE_FOR_SUBMISSION":
		return Advice{
			Tone:     ToneOK,
			Headline: "Version " + name + " is ready for localization work.",
			Steps: []string{
				"rosetta pull --force to get the current content",
				"rosetta pull --export metadata.csv to hand the copy to translators",
				"Upload the translated copy in App Store Connect",
			},
		}, true
	case "DEVELOPER_REJECTED", "METADATA_REJECTED", "REJECTED":
		return Advice{
			Tone:     ToneCaution,
			Headline: "Version " + name + " was rejected but can be edited.",
			Steps: []string{
				"Review the rejection reasons in App Store Connect",
				"Fix the issues and update localizations if needed",
				"Continue with the normal workflow starting at rosetta pull",
			},
		}, true
	case "WAITING_FOR_REVIEW", "IN_REVIEW":
		return Advice{
			Tone:     ToneStop,
			Headline: "Version " + name + " is in the review process. Do not modify localizations now.",
			Steps: []string{
				"Wait for the review to complete",
				"Create a new version if urgent changes are needed",
			},
		}, true
	case "READY_FOR_SALE":
		return Advice{
			Tone:     ToneOK,
			Headline: "Version " + name + " is live in the App Store.",
			Steps: []string{
				"Create a new app version in App Store Connect",
				"Run rosetta status to confirm the new version is editable",
				"Proceed with the normal localization workflow",
			},
		}, true
	}
	return Advice{
		Tone:     ToneUnknown,
		Headline: "Unknown status for version " + name + ".",
		Steps:    []string{"Check App Store Connect manually before editing"},
	}, true
}
