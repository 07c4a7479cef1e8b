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

const baseURL = "http://localhost:3000/api"

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

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataField(body []byte, key string) string {
	var parsed map[string]interface{}
	json.Unmarshal(body, &parsed)
	data, _ := parsed["data"].(map[string]interface{})
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func main() {
	color.Cyan("🚀 Starting Mediation API Flow Test\n")

	// 1. Partner A creates a session
	color.Yellow("\n[A] 1. Create Session")
	resp, body, err := sendRequest("POST", "/sessions", "", map[string]interface{}{
		"name":  "Alex",
		"email": "alex@example.com",
		"pin":   "1111",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var createResp map[string]interface{}
	json.Unmarshal(body, &createResp)
	prettyPrint(createResp)

	tokenA := dataField(body, "token")
	var code string
	if data, ok := createResp["data"].(map[string]interface{}); ok {
		if session, ok := data["session"].(map[string]interface{}); ok {
			code, _ = session["code"].(string)
		}
	}
	if tokenA == "" || code == "" {
		color.Red("Missing token or code, aborting")
		os.Exit(1)
	}
	fmt.Printf("Session code: %s\n", code)

	// 2. Partner A opens their thread and vents
	color.Yellow("\n[A] 2. Welcome + Messages")
	resp, body, _ = sendRequest("POST", "/chat/welcome", tokenA, nil)
	color.Green("Status: %s", resp.Status)

	for _, msg := range []string{
		"We keep arguing about money.",
		"I feel like my savings goals are ignored.",
		"Every conversation turns into a fight.",
	} {
		resp, body, err = sendRequest("POST", "/chat/send", tokenA, map[string]interface{}{"content": msg})
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("Status: %s", resp.Status)
	}

	// 3. Eligibility and hand-off
	color.Yellow("\n[A] 3. Eligibility + Bridge Summary")
	resp, body, _ = sendRequest("GET", "/chat/eligibility", tokenA, nil)
	color.Green("Status: %s", resp.Status)
	var eligibility map[string]interface{}
	json.Unmarshal(body, &eligibility)
	prettyPrint(eligibility)

	resp, body, _ = sendRequest("POST", "/handoff/summary", tokenA, nil)
	color.Green("Status: %s", resp.Status)
	var summary map[string]interface{}
	json.Unmarshal(body, &summary)
	prettyPrint(summary)

	// 4. Partner B joins with a fresh PIN
	color.Yellow("\n[B] 4. Join Session")
	resp, body, err = sendRequest("POST", "/sessions/join", "", map[string]interface{}{
		"code":  code,
		"pin":   "9999",
		"name":  "Sam",
		"email": "sam@example.com",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	tokenB := dataField(body, "token")
	if tokenB == "" {
		color.Red("Missing token for partner B, aborting")
		os.Exit(1)
	}

	// 5. Partner B's isolated thread
	color.Yellow("\n[B] 5. Welcome + Messages")
	resp, body, _ = sendRequest("POST", "/chat/welcome", tokenB, nil)
	color.Green("Status: %s", resp.Status)

	for _, msg := range []string{
		"I did not realize the savings mattered that much.",
		"I just want us to enjoy life a bit too.",
	} {
		resp, body, err = sendRequest("POST", "/chat/send", tokenB, map[string]interface{}{"content": msg})
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("Status: %s", resp.Status)
	}

	// 6. Both partners fetch the joint report
	color.Yellow("\n[A] 6. Report (as A)")
	resp, body, _ = sendRequest("GET", "/report", tokenA, nil)
	color.Green("Status: %s", resp.Status)
	var reportA map[string]interface{}
	json.Unmarshal(body, &reportA)
	prettyPrint(reportA)

	color.Yellow("\n[B] 6. Report (as B)")
	resp, body, _ = sendRequest("GET", "/report", tokenB, nil)
	color.Green("Status: %s", resp.Status)
	var reportB map[string]interface{}
	json.Unmarshal(body, &reportB)
	prettyPrint(reportB)

	color.Cyan("\n✅ Flow complete")
}
