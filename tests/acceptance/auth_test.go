package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mapda-dev/mapda-api/internal/dto"
)

func (s *Suite) kakaoLogin(id string) (*http.Response, dto.LoginResponse) {
	truePtr := true
	reqBody := dto.KakaoLoginRequest{
		ID:                    id,
		Nickname:              "tester",
		Email:                 id + "@example.com",
		ProfileImage:          "http://img.example.com/default.jpg",
		IsProfileImageDefault: &truePtr,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/login/kakao",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)

	var loginResp dto.LoginResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&loginResp))
	resp.Body.Close()

	return resp, loginResp
}

func (s *Suite) completeRegistration(accessToken string) dto.UserResponse {
	reqBody := dto.RegisterCompleteRequest{
		Nickname:   "campus-tester",
		University: "YONSEI_SINCHON",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/userinfo/register_complete", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var userResp dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&userResp))
	return userResp
}

func (s *Suite) TestKakaoLogin_NewUser() {
	resp, loginResp := s.kakaoLogin("1000001")

	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Equal("Need_Register", loginResp.Message)
	s.NotEmpty(loginResp.AccessToken)
	s.NotEmpty(loginResp.RefreshToken)
}

func (s *Suite) TestKakaoLogin_SecondLoginBeforeRegistration() {
	resp1, first := s.kakaoLogin("1000002")
	s.Equal(http.StatusCreated, resp1.StatusCode)

	resp2, second := s.kakaoLogin("1000002")
	s.Equal(http.StatusAccepted, resp2.StatusCode)
	s.Equal("Need_Register", second.Message)
	s.NotEqual(first.RefreshToken, second.RefreshToken)
}

func (s *Suite) TestKakaoLogin_ActiveUser() {
	_, login := s.kakaoLogin("1000003")
	s.completeRegistration(login.AccessToken)

	resp, relogin := s.kakaoLogin("1000003")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Login successful", relogin.Message)
}

func (s *Suite) TestKakaoLogin_MissingID() {
	resp, err := http.Post(
		s.BaseURL+"/login/kakao",
		"application/json",
		bytes.NewBufferString(`{"nickname":"no-id"}`),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegisterComplete() {
	_, login := s.kakaoLogin("1000004")

	userResp := s.completeRegistration(login.AccessToken)
	s.Equal("Active", userResp.Status)
	s.Require().NotNil(userResp.University)
	s.Equal("YONSEI_SINCHON", *userResp.University)
	s.NotEmpty(userResp.UUID)
}

func (s *Suite) TestRegisterComplete_UnknownUniversity() {
	_, login := s.kakaoLogin("1000005")

	body, _ := json.Marshal(dto.RegisterCompleteRequest{
		Nickname:   "tester",
		University: "HOGWARTS",
	})
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/userinfo/register_complete", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", login.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRefresh() {
	_, login := s.kakaoLogin("1000006")

	body, _ := json.Marshal(dto.RefreshRequest{RefreshToken: login.RefreshToken})
	resp, err := http.Post(s.BaseURL+"/auth/refresh", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var refreshResp dto.RefreshResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&refreshResp))
	s.NotEmpty(refreshResp.AccessToken)
	s.Equal("Bearer", refreshResp.TokenType)
}

func (s *Suite) TestRefresh_UnknownToken() {
	// A token superseded by a later login no longer resolves.
	_, first := s.kakaoLogin("1000007")
	_, _ = s.kakaoLogin("1000007")

	body, _ := json.Marshal(dto.RefreshRequest{RefreshToken: first.RefreshToken})
	resp, err := http.Post(s.BaseURL+"/auth/refresh", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_Garbage() {
	body, _ := json.Marshal(dto.RefreshRequest{RefreshToken: "not-a-token"})
	resp, err := http.Post(s.BaseURL+"/auth/refresh", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestInquire() {
	_, login := s.kakaoLogin("1000008")
	s.completeRegistration(login.AccessToken)

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/userinfo/inquire", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", login.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var userResp dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&userResp))
	s.Equal("KAKAO", userResp.ProviderType)
	s.Require().NotNil(userResp.Email)
	s.Equal("1000008@example.com", *userResp.Email)
}

func (s *Suite) TestInquire_NoToken() {
	resp, err := http.Get(s.BaseURL + "/api/v1/userinfo/inquire")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestUpdateUserInfo() {
	_, login := s.kakaoLogin("1000009")
	s.completeRegistration(login.AccessToken)

	profileNumber := 5
	body, _ := json.Marshal(dto.UpdateUserInfoRequest{ProfileNumber: &profileNumber})
	req, _ := http.NewRequest("PATCH", s.BaseURL+"/api/v1/userinfo/update_userinfo", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", login.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var userResp dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&userResp))
	s.Equal(5, userResp.ProfileNumber)
	s.Require().NotNil(userResp.Nickname)
	s.Equal("campus-tester", *userResp.Nickname)
}

func (s *Suite) checkNickname(accessToken, name string) int {
	url := s.BaseURL + "/api/v1/userinfo/check_nickname"
	if name != "" {
		url += "?name=" + name
	}
	req, _ := http.NewRequest("GET", url, nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	return resp.StatusCode
}

func (s *Suite) TestCheckNickname() {
	_, login := s.kakaoLogin("1000013")
	s.completeRegistration(login.AccessToken)

	s.Equal(http.StatusConflict, s.checkNickname(login.AccessToken, "campus-tester"))
	s.Equal(http.StatusOK, s.checkNickname(login.AccessToken, "free-nickname"))
	s.Equal(http.StatusBadRequest, s.checkNickname(login.AccessToken, ""))
}

func (s *Suite) TestMessageFlow() {
	_, sender := s.kakaoLogin("1000010")
	senderUser := s.completeRegistration(sender.AccessToken)
	_ = senderUser

	_, recipient := s.kakaoLogin("1000011")
	recipientUser := s.completeRegistration(recipient.AccessToken)

	body, _ := json.Marshal(dto.SendMessageRequest{
		RecipientUUID: recipientUser.UUID,
		MessageTypes:  []int{1, 4},
	})
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/message", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sender.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	checkReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/message_check", nil)
	checkReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", recipient.AccessToken))

	checkResp, err := http.DefaultClient.Do(checkReq)
	s.Require().NoError(err)
	defer checkResp.Body.Close()
	s.Equal(http.StatusOK, checkResp.StatusCode)

	var check dto.MessageCheckResponse
	s.Require().NoError(json.NewDecoder(checkResp.Body).Decode(&check))
	s.True(check.HasNewMessage)
	s.Require().NotNil(check.Message)
	s.Equal([]int{1, 4}, check.Message.MessageTypes)
}

func (s *Suite) TestAdminLogin() {
	body, _ := json.Marshal(dto.AdminLoginRequest{Password: adminPassword})
	resp, err := http.Post(s.BaseURL+"/admin/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var adminResp dto.AdminLoginResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&adminResp))
	s.NotEmpty(adminResp.AccessToken)
}

func (s *Suite) TestAdminLogin_WrongPassword() {
	body, _ := json.Marshal(dto.AdminLoginRequest{Password: "wrong"})
	resp, err := http.Post(s.BaseURL+"/admin/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestAdminFlushRedis() {
	body, _ := json.Marshal(dto.AdminLoginRequest{Password: adminPassword})
	loginResp, err := http.Post(s.BaseURL+"/admin/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	var adminResp dto.AdminLoginResponse
	s.Require().NoError(json.NewDecoder(loginResp.Body).Decode(&adminResp))
	loginResp.Body.Close()

	req, _ := http.NewRequest("DELETE", s.BaseURL+"/admin/flush-redis", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", adminResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestAdminFlushRedis_NonAdminForbidden() {
	_, login := s.kakaoLogin("1000012")

	req, _ := http.NewRequest("DELETE", s.BaseURL+"/admin/flush-redis", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", login.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}
