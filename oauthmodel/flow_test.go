package oauthmodel_test

import (
	"testing"

	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
	"github.com/stretchr/testify/require"
)

func TestClassifyFlow(t *testing.T) {
	tests := []struct {
		responseTypes []string
		want          oauthmodel.FlowType
	}{
		{[]string{"code"}, oauthmodel.FlowAuthorizationCode},
		{[]string{"token"}, oauthmodel.FlowToken},
		{[]string{"id_token"}, oauthmodel.FlowImplicit},
		{[]string{"id_token token", "token id_token"}, oauthmodel.FlowImplicit},
		{[]string{"code id_token", "id_token code"}, oauthmodel.FlowHybrid},
		{[]string{"code token", "token code"}, oauthmodel.FlowHybrid},
		{[]string{
			"code id_token token",
			"code token id_token",
			"id_token code token",
			"id_token token code",
			"token code id_token",
			"token id_token code",
		}, oauthmodel.FlowHybrid},
	}

	for _, tt := range tests {
		for _, rt := range tt.responseTypes {
			t.Run(rt, func(t *testing.T) {
				require.Equal(t, tt.want, oauthmodel.ClassifyFlow(rt))
			})
		}
	}

	t.Run("duplicates collapse", func(t *testing.T) {
		require.Equal(t, oauthmodel.FlowAuthorizationCode, oauthmodel.ClassifyFlow("code code"))
		require.Equal(t, oauthmodel.FlowImplicit, oauthmodel.ClassifyFlow("id_token  id_token"))
	})

	t.Run("invalid", func(t *testing.T) {
		for _, rt := range []string{"", "   ", "value", "value1 value2", "code foo", "CODE", "Code id_token"} {
			require.Equal(t, oauthmodel.FlowInvalid, oauthmodel.ClassifyFlow(rt), rt)
		}
	})
}

func TestResponseType(t *testing.T) {
	t.Run("Is is order independent", func(t *testing.T) {
		rt := oauthmodel.ResponseType("token code")
		require.True(t, rt.Is(oauthmodel.ResponseTypeCode, oauthmodel.ResponseTypeToken))
		require.False(t, rt.Is(oauthmodel.ResponseTypeCode))
	})

	t.Run("CarriesToken", func(t *testing.T) {
		require.False(t, oauthmodel.ResponseType("code").CarriesToken())
		require.True(t, oauthmodel.ResponseType("token").CarriesToken())
		require.True(t, oauthmodel.ResponseType("code id_token").CarriesToken())
	})
}

func TestError(t *testing.T) {
	err := oauthmodel.RequiredError("nonce")
	require.Equal(t, oauthmodel.ErrorCodeRequired, err.Code)
	require.Equal(t, "nonce", err.Attribute)
	require.Equal(t, "required: This attribute is required: nonce. (nonce)", err.Error())
	require.False(t, err.IsUserError())
	require.True(t, oauthmodel.ServerError().IsUserError())
}
