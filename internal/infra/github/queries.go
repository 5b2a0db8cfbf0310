package github

const issueContextQuery = `query IssueContext($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    issue(number: $number) {
      id
      number
      title
      body
      labels(first: 100) { nodes { id name } }
    }
    projects(first: 100) {
      nodes {
        id
        databaseId
        name
        columns(first: 100) { nodes { id databaseId name } }
      }
    }
  }
}`

const createIssueMutation = `mutation CreateIssue($input: CreateIssueInput!) {
  createIssue(input: $input) {
    issue {
      id
      number
      title
      body
      labels(first: 100) { nodes { id name } }
    }
  }
}`

const updateIssueMutation = `mutation UpdateIssue($input: UpdateIssueInput!) {
  updateIssue(input: $input) {
    issue { id }
  }
}`

const addToProjectMutation = `mutation AddToProject($projectId: ID!, $contentId: ID!) {
  addProjectV2ItemById(input: {projectId: $projectId, contentId: $contentId}) {
    item { id }
  }
}`

type labelNodes struct {
	Nodes []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"nodes"`
}

type issueNode struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Body   string     `json:"body"`
	Labels labelNodes `json:"labels"`
	Number int        `json:"number"`
}

type columnNode struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DatabaseID int64  `json:"databaseId"`
}

type projectNode struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Columns struct {
		Nodes []columnNode `json:"nodes"`
	} `json:"columns"`
	DatabaseID int64 `json:"databaseId"`
}

type issueContextData struct {
	Repository *struct {
		Issue    *issueNode `json:"issue"`
		Projects struct {
			Nodes []projectNode `json:"nodes"`
		} `json:"projects"`
	} `json:"repository"`
}

type createIssueData struct {
	CreateIssue struct {
		Issue issueNode `json:"issue"`
	} `json:"createIssue"`
}

type addToProjectData struct {
	AddProjectV2ItemByID struct {
		Item struct {
			ID string `json:"id"`
		} `json:"item"`
	} `json:"addProjectV2ItemById"`
}
