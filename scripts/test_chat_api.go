package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:8000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // No timeout, chat replies can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataField(body []byte) map[string]interface{} {
	var parsed map[string]interface{}
	json.Unmarshal(body, &parsed)
	if data, ok := parsed["data"].(map[string]interface{}); ok {
		return data
	}
	return nil
}

func main() {
	color.Cyan("🚀 Starting Chat API Test\n")

	// 1. Register a throwaway user (conflict on re-runs is fine)
	color.Yellow("\n1. Register Test User")
	registerReq := map[string]interface{}{
		"username":  "smoketester",
		"email":     "smoketester@example.com",
		"full_name": "Smoke Tester",
		"password":  "smoketester-pass-123",
	}
	resp, body, err := sendRequest("POST", "/auth/v1/register", "", registerReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	// 2. Login
	color.Yellow("\n2. Login")
	loginReq := map[string]interface{}{
		"username": "smoketester",
		"password": "smoketester-pass-123",
	}
	resp, body, err = sendRequest("POST", "/auth/v1/login", "", loginReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var token string
	if data := dataField(body); data != nil {
		token, _ = data["access_token"].(string)
	}
	if token == "" {
		color.Red("Login did not return a token, aborting")
		os.Exit(1)
	}

	// 3. Send a chat turn (fresh session, server assigns the id)
	color.Yellow("\n3. Send Chat Turn (New Session)")
	chatReq := map[string]interface{}{
		"messages": []map[string]string{
			{"role": "user", "content": "In one sentence, what is a goroutine?"},
		},
		"purpose": "smoke-test",
	}
	resp, body, err = sendRequest("POST", "/chat/v1/send", token, chatReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var sessionID string
	if data := dataField(body); data != nil {
		sessionID, _ = data["chat_session_id"].(string)
		fmt.Printf("Session ID: %s\n", sessionID)
		fmt.Printf("Reply: %s\n", data["reply"])
		fmt.Printf("Model: %s\n", data["model_used"])
	}

	// 4. Follow-up turn in the same session
	color.Yellow("\n4. Send Follow-up Turn")
	if sessionID == "" {
		color.Red("Skipping: no session id from previous step")
	} else {
		followReq := map[string]interface{}{
			"messages": []map[string]string{
				{"role": "user", "content": "In one sentence, what is a goroutine?"},
				{"role": "assistant", "content": "A goroutine is a lightweight thread managed by the Go runtime."},
				{"role": "user", "content": "And what is a channel?"},
			},
			"chat_session_id": sessionID,
		}
		resp, body, err = sendRequest("POST", "/chat/v1/send", token, followReq)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			if data := dataField(body); data != nil {
				fmt.Printf("Reply: %s\n", data["reply"])
			}
		}
	}

	// 5. List sessions
	color.Yellow("\n5. List Sessions")
	resp, body, err = sendRequest("GET", "/chat/v1/sessions", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var sessResp map[string]interface{}
		json.Unmarshal(body, &sessResp)
		prettyPrint(sessResp)
	}

	// 6. Fetch history
	color.Yellow("\n6. Fetch Session History")
	if sessionID == "" {
		color.Red("Skipping: no session id")
	} else {
		resp, body, err = sendRequest("GET", "/chat/v1/sessions/"+sessionID+"/messages", token, nil)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			var histResp map[string]interface{}
			json.Unmarshal(body, &histResp)
			prettyPrint(histResp)
		}
	}

	// 7. Rename session
	color.Yellow("\n7. Rename Session")
	if sessionID != "" {
		renameReq := map[string]interface{}{"title": "Smoke Test Conversation"}
		resp, _, err = sendRequest("PATCH", "/chat/v1/sessions/"+sessionID, token, renameReq)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
		}
	}

	// 8. Cleanup: delete the session
	color.Yellow("\n8. Cleanup: Delete Session")
	if sessionID != "" {
		resp, _, err = sendRequest("DELETE", "/chat/v1/sessions/"+sessionID, token, nil)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
		}
	}

	color.Cyan("\n✅ Test Sequence Complete")
}
