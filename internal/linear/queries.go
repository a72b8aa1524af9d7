package linear

// GraphQL documents for the operations the client issues.

// issueSelection is shared by Issue and IssueSearchResult, which expose the
// same fields.
const issueSelection = `
		id
		identifier
		title
		description
		url
		priority
		state {
			id
			name
			type
			position
		}
		assignee {
			id
			name
			displayName
			email
		}
		team {
			id
			key
			name
		}
		labels {
			nodes {
				id
				name
				color
			}
		}
		cycle {
			id
			number
			name
			isActive
		}
		project {
			id
			name
		}
		createdAt
		updatedAt
		completedAt
`

const issueFieldsFragment = `
	fragment IssueFields on Issue {` + issueSelection + `	}
`

const issueSearchFieldsFragment = `
	fragment IssueSearchFields on IssueSearchResult {` + issueSelection + `	}
`

const viewerQuery = `
	query Viewer {
		viewer {
			id
			name
			displayName
			email
			active
		}
	}
`

const teamsQuery = `
	query Teams($first: Int!) {
		teams(first: $first) {
			nodes {
				id
				key
				name
			}
		}
	}
`

const teamStatesQuery = `
	query TeamStates($teamId: String!) {
		team(id: $teamId) {
			id
			states {
				nodes {
					id
					name
					type
					position
				}
			}
		}
	}
`

const teamLabelsQuery = `
	query TeamLabels($teamId: String!, $first: Int!) {
		team(id: $teamId) {
			id
			labels(first: $first) {
				nodes {
					id
					name
					color
				}
			}
		}
	}
`

const workspaceLabelsQuery = `
	query WorkspaceLabels($first: Int!) {
		issueLabels(first: $first) {
			nodes {
				id
				name
				color
			}
		}
	}
`

const teamCyclesQuery = `
	query TeamCycles($teamId: String!, $first: Int!) {
		team(id: $teamId) {
			id
			cycles(first: $first) {
				nodes {
					id
					number
					name
					startsAt
					endsAt
					isActive
				}
			}
		}
	}
`

const searchUsersQuery = `
	query SearchUsers($filter: UserFilter, $first: Int!) {
		users(filter: $filter, first: $first) {
			nodes {
				id
				name
				displayName
				email
				active
			}
		}
	}
`

const projectsQuery = `
	query Projects($first: Int!) {
		projects(first: $first) {
			nodes {
				id
				name
				state
				url
			}
		}
	}
`

const searchIssuesQuery = `
	query SearchIssues($term: String!, $filter: IssueFilter, $first: Int!, $includeArchived: Boolean) {
		searchIssues(term: $term, filter: $filter, first: $first, includeArchived: $includeArchived) {
			nodes {
				...IssueSearchFields
			}
		}
	}
` + issueSearchFieldsFragment

const searchProjectsQuery = `
	query SearchProjects($term: String!, $first: Int!, $includeArchived: Boolean) {
		projects(filter: {name: {containsIgnoreCase: $term}}, first: $first, includeArchived: $includeArchived) {
			nodes {
				id
				name
				state
				url
			}
		}
	}
`

const issuesQuery = `
	query Issues($filter: IssueFilter, $first: Int!) {
		issues(filter: $filter, first: $first, orderBy: updatedAt) {
			nodes {
				...IssueFields
			}
			pageInfo {
				hasNextPage
				endCursor
			}
		}
	}
` + issueFieldsFragment

const issueQuery = `
	query Issue($id: String!) {
		issue(id: $id) {
			...IssueFields
		}
	}
` + issueFieldsFragment

const createIssueMutation = `
	mutation CreateIssue($input: IssueCreateInput!) {
		issueCreate(input: $input) {
			success
			issue {
				...IssueFields
			}
		}
	}
` + issueFieldsFragment

const updateIssueMutation = `
	mutation UpdateIssue($id: String!, $input: IssueUpdateInput!) {
		issueUpdate(id: $id, input: $input) {
			success
			issue {
				...IssueFields
			}
		}
	}
` + issueFieldsFragment

const createCommentMutation = `
	mutation CreateComment($input: CommentCreateInput!) {
		commentCreate(input: $input) {
			success
			comment {
				id
				body
				createdAt
				user {
					id
					name
					displayName
				}
			}
		}
	}
`

const issueCommentsQuery = `
	query IssueComments($id: String!, $first: Int!) {
		issue(id: $id) {
			id
			identifier
			comments(first: $first) {
				nodes {
					id
					body
					createdAt
					user {
						id
						name
						displayName
					}
				}
			}
		}
	}
`
