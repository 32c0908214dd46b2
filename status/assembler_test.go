package status_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/viridianmc/viridian/status"
)

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func newTestAssembler(resolved status.Response, loader status.FaviconLoader) status.Assembler {
	if loader == nil {
		loader = status.FaviconLoaderFunc(func(source status.FaviconSource) (string, error) {
			return "", errors.New("no loader in this test")
		})
	}
	resolver := status.ResolverFunc(func(client status.Client) status.Response {
		return resolved
	})
	favicons := status.NewFaviconCache(loader, testPolicy, zerolog.Nop())
	samples := status.NewSampleBuilder(nil, testPolicy)
	return status.NewAssembler(resolver, favicons, samples)
}

func TestAssembler_MergesResolvedFields(t *testing.T) {
	resolved := status.Response{
		Description:   strPtr("A Viridian Server"),
		VersionName:   strPtr("1.17.1"),
		Protocol:      intPtr(756),
		OnlinePlayers: intPtr(7),
		MaxPlayers:    intPtr(100),
	}
	assembler := newTestAssembler(resolved, nil)

	got := assembler.Build(status.Client{})
	want := status.PingResponse{
		Version:     &status.Version{Name: "1.17.1", Protocol: 756},
		Players:     &status.Players{Online: 7, Max: 100},
		Description: &status.Description{Text: "A Viridian Server"},
	}

	if !cmp.Equal(want, got) {
		t.Errorf("got different response than expected: %v", cmp.Diff(want, got))
	}
}

func TestAssembler_EmptyResponseKeepsDefaults(t *testing.T) {
	assembler := newTestAssembler(status.Response{}, nil)

	got := assembler.Build(status.Client{})
	want := status.PingResponse{
		Version: &status.Version{},
		Players: &status.Players{},
	}

	if !cmp.Equal(want, got) {
		t.Errorf("got different response than expected: %v", cmp.Diff(want, got))
	}
}

func TestAssembler_HidePlayersWithholdsPlayerBlock(t *testing.T) {
	resolved := status.Response{
		HidePlayers:   true,
		OnlinePlayers: intPtr(7),
		MaxPlayers:    intPtr(100),
		PlayerHover:   strPtr("nothing to see"),
	}
	assembler := newTestAssembler(resolved, nil)

	got := assembler.Build(status.Client{})
	if got.Players != nil {
		t.Errorf("expected the player block to be withheld but got %v", got.Players)
	}
}

func TestAssembler_FaviconLoadFailureLeavesResponseWithoutIcon(t *testing.T) {
	loader := status.FaviconLoaderFunc(func(source status.FaviconSource) (string, error) {
		return "", errors.New("file does not exist")
	})
	resolved := status.Response{
		Favicon: &status.FaviconSource{Kind: status.SourceFile, Value: "missing.png"},
	}
	assembler := newTestAssembler(resolved, loader)

	got := assembler.Build(status.Client{})
	if got.Favicon != "" {
		t.Errorf("expected no favicon but got %v", got.Favicon)
	}
}

func TestAssembler_FaviconIsIncludedWhenLoaded(t *testing.T) {
	loader := status.FaviconLoaderFunc(func(source status.FaviconSource) (string, error) {
		return "data:image/png;base64,icon", nil
	})
	resolved := status.Response{
		Favicon: &status.FaviconSource{Kind: status.SourceFile, Value: "server.png"},
	}
	assembler := newTestAssembler(resolved, loader)

	got := assembler.Build(status.Client{})
	if got.Favicon != "data:image/png;base64,icon" {
		t.Errorf("got a different favicon than expected: %v", got.Favicon)
	}
}

func TestAssembler_SingleSampleIsVerbatim(t *testing.T) {
	resolved := status.Response{
		PlayerHover: strPtr("welcome to viridian"),
	}
	assembler := newTestAssembler(resolved, nil)

	got := assembler.Build(status.Client{})
	want := []status.UserProfile{
		{Name: "welcome to viridian", ID: status.EmptyProfileID},
	}

	if !cmp.Equal(want, got.Players.Sample) {
		t.Errorf("got different sample than expected: %v", cmp.Diff(want, got.Players.Sample))
	}
}

func TestAssembler_MultipleSamplesSplitIntoCount(t *testing.T) {
	resolved := status.Response{
		PlayerHover:     strPtr("abcdefghij"),
		MultipleSamples: true,
		SampleCount:     intPtr(5),
	}
	assembler := newTestAssembler(resolved, nil)

	got := assembler.Build(status.Client{})
	if len(got.Players.Sample) != 5 {
		t.Fatalf("expected 5 sample entries but got %v", len(got.Players.Sample))
	}
	for _, profile := range got.Players.Sample {
		if profile.ID != status.EmptyProfileID {
			t.Errorf("expected the empty profile id but got %v", profile.ID)
		}
	}
}

func TestAssembler_MultipleSamplesWithoutCountStayOneLine(t *testing.T) {
	resolved := status.Response{
		PlayerHover:     strPtr("abcdefghij"),
		MultipleSamples: true,
	}
	assembler := newTestAssembler(resolved, nil)

	got := assembler.Build(status.Client{})
	want := []status.UserProfile{
		{Name: "abcdefghij", ID: status.EmptyProfileID},
	}

	if !cmp.Equal(want, got.Players.Sample) {
		t.Errorf("got different sample than expected: %v", cmp.Diff(want, got.Players.Sample))
	}
}

func TestAssembler_BuildLegacyForcesLegacyProtocol(t *testing.T) {
	resolved := status.Response{
		VersionName: strPtr("1.17.1"),
		Protocol:    intPtr(756),
	}
	assembler := newTestAssembler(resolved, nil)

	got := assembler.BuildLegacy(status.Client{})
	if got.Version.Protocol != status.LegacyProtocol {
		t.Errorf("expected protocol %v but got %v", status.LegacyProtocol, got.Version.Protocol)
	}
	if got.Version.Name != "1.17.1" {
		t.Errorf("got a different version name than expected: %v", got.Version.Name)
	}
}

func TestAssembler_BuildLegacyReplacesWithheldPlayers(t *testing.T) {
	assembler := newTestAssembler(status.Response{HidePlayers: true}, nil)

	got := assembler.BuildLegacy(status.Client{})
	want := &status.Players{Online: 0, Max: status.LegacyUnknownMax}

	if !cmp.Equal(want, got.Players) {
		t.Errorf("got different players than expected: %v", cmp.Diff(want, got.Players))
	}
}

func TestAssembler_BuildLegacyKeepsVisibleCounts(t *testing.T) {
	resolved := status.Response{
		OnlinePlayers: intPtr(3),
		MaxPlayers:    intPtr(60),
	}
	assembler := newTestAssembler(resolved, nil)

	got := assembler.BuildLegacy(status.Client{})
	want := &status.Players{Online: 3, Max: 60}

	if !cmp.Equal(want, got.Players) {
		t.Errorf("got different players than expected: %v", cmp.Diff(want, got.Players))
	}
}
